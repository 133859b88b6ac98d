// Package suppress decides when a match is intentional and must not be
// reported. It runs as two independent stages: a file-level directive that
// silences a whole file, and a line-level marker that silences one finding.
package suppress

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMarkers are the patterns used by intentionally vulnerable fixtures.
var DefaultMarkers = []string{
	`FAKE-DEMO-.*`,
	`.*DEMO CREDENTIAL.*`,
	`SECURITY_TEST_IGNORE:`,
}

const markerTimeout = time.Second

// commentPrefixes are the language-agnostic comment starters we recognize.
var commentPrefixes = []string{"//", "#", "--", "/*", "<!--", "*"}

// Markers is a compiled suppression-marker set.
type Markers struct {
	sources  []string
	patterns []*regexp2.Regexp
}

// Hit records which marker fired and where.
type Hit struct {
	Line   int
	Marker string
}

// Compile builds a marker set. Empty entries are ignored.
func Compile(patterns []string) (*Markers, error) {
	m := &Markers{}
	for _, raw := range patterns {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		re, err := regexp2.Compile(raw, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compile suppression marker %q: %w", raw, err)
		}
		re.MatchTimeout = markerTimeout
		m.sources = append(m.sources, raw)
		m.patterns = append(m.patterns, re)
	}
	return m, nil
}

// Len reports the number of active markers. A nil set has none.
func (m *Markers) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// FileDirective returns the first comment-only line carrying a marker.
// Such a line is a statement about the whole file rather than about the
// code next to it, so the caller skips the file before rule matching.
func (m *Markers) FileDirective(lines []string) (Hit, bool, error) {
	if m.Len() == 0 {
		return Hit{}, false, nil
	}
	for idx, line := range lines {
		if !isCommentLine(line) {
			continue
		}
		marker, ok, err := m.MatchLine(line)
		if err != nil {
			return Hit{}, false, fmt.Errorf("line %d: %w", idx+1, err)
		}
		if ok {
			return Hit{Line: idx + 1, Marker: marker}, true, nil
		}
	}
	return Hit{}, false, nil
}

// MatchLine reports whether any marker occurs in line and which one.
func (m *Markers) MatchLine(line string) (string, bool, error) {
	if m.Len() == 0 {
		return "", false, nil
	}
	for i, re := range m.patterns {
		ok, err := re.MatchString(line)
		if err != nil {
			return "", false, fmt.Errorf("suppression marker %q: %w", m.sources[i], err)
		}
		if ok {
			return m.sources[i], true, nil
		}
	}
	return "", false, nil
}

func isCommentLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, prefix := range commentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
