// Package match runs the rule table over a single file and turns matches
// into findings.
package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/intake"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/suppress"
)

const (
	DefaultMaxFileBytes = 2 * 1024 * 1024
	maxMatchRunes       = 100
	contextBefore       = 1
	contextAfter        = 3
)

// ErrMatchTimeout marks a rule that exhausted its time budget on a file.
// Findings produced before the timeout are still returned.
var ErrMatchTimeout = errors.New("pattern match timed out")

type Options struct {
	Rules   []rules.Compiled
	Markers *suppress.Markers
	// MaxFileBytes skips larger files. Zero disables the limit; negative
	// selects DefaultMaxFileBytes.
	MaxFileBytes int64
}

type Matcher struct {
	rules    []rules.Compiled
	markers  *suppress.Markers
	maxBytes int64
	sink     progress.Sink
}

func New(opts Options, sink progress.Sink) *Matcher {
	maxBytes := opts.MaxFileBytes
	if maxBytes < 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Matcher{
		rules:    opts.Rules,
		markers:  opts.Markers,
		maxBytes: maxBytes,
		sink:     progress.OrNoop(sink),
	}
}

// ScanFile matches every rule against one file.
//
// A read failure returns a nil slice and an error. A rule that times out is
// abandoned for this file only: the returned error wraps ErrMatchTimeout
// and the findings gathered so far, including those from other rules, are
// returned alongside it.
func (m *Matcher) ScanFile(fs billy.Filesystem, c intake.Candidate) ([]model.Finding, error) {
	if m.maxBytes > 0 {
		fi, err := fs.Stat(c.Path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", c.Display, err)
		}
		if fi.Size() > m.maxBytes {
			m.sink.Emit(progress.Event{
				Type:    progress.EventFileSkipped,
				Path:    c.Display,
				Reason:  progress.ReasonTooLarge,
				Message: fmt.Sprintf("size=%d exceeds %d", fi.Size(), m.maxBytes),
			})
			return nil, nil
		}
	}

	raw, err := util.ReadFile(fs, c.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Display, err)
	}
	return m.ScanContent(c.Display, raw)
}

// ScanContent matches every rule against raw file content reported under
// display. Invalid UTF-8 is dropped and line endings are normalised first.
func (m *Matcher) ScanContent(display string, raw []byte) ([]model.Finding, error) {
	content := Normalize(raw)
	lines := strings.Split(content, "\n")

	hit, skip, err := m.markers.FileDirective(lines)
	if err != nil {
		return nil, fmt.Errorf("check markers in %s: %w", display, err)
	}
	if skip {
		m.sink.Emit(progress.Event{
			Type:    progress.EventFileSkipped,
			Path:    display,
			Line:    hit.Line,
			Reason:  progress.ReasonMarker,
			Message: hit.Marker,
		})
		return nil, nil
	}

	text := []rune(content)
	starts := lineStarts(text)

	var findings []model.Finding
	var timeouts []error
	for _, rule := range m.rules {
		found, err := m.matchRule(rule, display, text, starts, lines)
		findings = append(findings, found...)
		if err != nil {
			m.sink.Emit(progress.Event{
				Type:  progress.EventMatchTimeout,
				Path:  display,
				Rule:  rule.Name,
				Error: err.Error(),
			})
			timeouts = append(timeouts, fmt.Errorf("rule %s: %w: %v", rule.Name, ErrMatchTimeout, err))
		}
	}
	return findings, errors.Join(timeouts...)
}

func (m *Matcher) matchRule(rule rules.Compiled, display string, text []rune, starts []int, lines []string) ([]model.Finding, error) {
	var out []model.Finding
	match, err := rule.Regex.FindRunesMatch(text)
	for ; match != nil && err == nil; match, err = rule.Regex.FindNextMatch(match) {
		line := lineOf(starts, match.Index)
		if line > len(lines) {
			line = len(lines)
		}

		// Marker errors are bounded by their own timeout; treat them as no marker.
		if marker, ok, _ := m.markers.MatchLine(lines[line-1]); ok {
			m.sink.Emit(progress.Event{
				Type:    progress.EventFindingSuppressed,
				Path:    display,
				Line:    line,
				Rule:    rule.Name,
				Message: marker,
			})
			continue
		}

		out = append(out, model.Finding{
			File:        display,
			Line:        line,
			Rule:        rule.Name,
			Severity:    rule.Severity,
			CWE:         rule.CWE,
			Match:       truncate(match.String(), maxMatchRunes),
			Context:     contextWindow(lines, line),
			Description: rule.Description,
		})
	}
	return out, err
}

// Normalize decodes raw permissively: invalid UTF-8 sequences are removed
// and CRLF or lone CR line endings become LF.
func Normalize(raw []byte) string {
	s := strings.ToValidUTF8(string(raw), "")
	if strings.IndexByte(s, '\r') >= 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
	}
	return s
}

// lineStarts returns the rune offset at which each line begins.
func lineStarts(text []rune) []int {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineOf converts a rune offset into a 1-based line number.
func lineOf(starts []int, idx int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > idx })
}

// contextWindow returns one line before through three lines after line,
// clipped to the file.
func contextWindow(lines []string, line int) string {
	lo := max(0, line-1-contextBefore)
	hi := min(len(lines), line+contextAfter)
	return strings.Join(lines[lo:hi], "\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// IsTimeout reports whether err came from a rule exhausting its budget.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrMatchTimeout)
}
