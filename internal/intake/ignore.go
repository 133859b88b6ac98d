package intake

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/gobwas/glob"
)

// IgnoreFileName is looked up at the scan root.
const IgnoreFileName = ".secscanignore"

// IgnoreRules is a compiled .secscanignore. Patterns follow gitignore:
// a pattern without a slash matches the base name at any depth, a leading
// slash anchors it to the scan root, a trailing slash limits it to
// directories, "**" crosses directory levels and "!" re-includes. Brace
// alternatives such as "*.{pem,key}" are accepted as well.
type IgnoreRules struct {
	entries []ignoreEntry
}

type ignoreEntry struct {
	source   string
	negated  bool
	dirOnly  bool
	basename bool
	globs    []glob.Glob
}

// LoadIgnoreFile reads and parses an ignore file from fs. A missing file
// yields nil rules and no error.
func LoadIgnoreFile(fs billy.Filesystem, name string) (*IgnoreRules, error) {
	f, err := fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ignore file %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ignore file %s: %w", name, err)
	}
	return ParseIgnorePatterns(lines), nil
}

// ParseIgnorePatterns compiles ignore lines. Blank lines, comments and
// patterns that fail to compile are dropped.
func ParseIgnorePatterns(lines []string) *IgnoreRules {
	rules := &IgnoreRules{}
	for _, raw := range lines {
		if e, ok := parseIgnoreLine(raw); ok {
			rules.entries = append(rules.entries, e)
		}
	}
	return rules
}

func parseIgnoreLine(raw string) (ignoreEntry, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreEntry{}, false
	}

	e := ignoreEntry{source: line}
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		e.negated = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		e.dirOnly = true
		line = rest
	}
	if line == "" {
		return ignoreEntry{}, false
	}

	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	e.basename = !anchored && !strings.Contains(line, "/")

	for _, variant := range expandDoubleStar(line) {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return ignoreEntry{}, false
		}
		e.globs = append(e.globs, g)
	}
	return e, true
}

// expandDoubleStar lists the forms of pattern where "**/" also matches zero
// directories, which glob's super-asterisk alone does not cover.
func expandDoubleStar(pattern string) []string {
	out := []string{pattern}
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		out = append(out, expandDoubleStar(rest)...)
	}
	if before, after, ok := strings.Cut(pattern, "/**/"); ok {
		for _, tail := range expandDoubleStar(after) {
			out = append(out, before+"/"+tail)
		}
	}
	return out
}

func (e ignoreEntry) matches(relPath string) bool {
	target := relPath
	if e.basename {
		target = path.Base(relPath)
	}
	for _, g := range e.globs {
		if g.Match(target) {
			return true
		}
	}
	return false
}

func (r *IgnoreRules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// ShouldIgnore reports whether relPath (slash separated, relative to the
// scan root) is excluded. The last matching pattern wins. Safe on nil.
func (r *IgnoreRules) ShouldIgnore(relPath string, isDir bool) bool {
	if r.Len() == 0 {
		return false
	}
	relPath = strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(relPath)), "/")
	if relPath == "" {
		return false
	}

	ignored := false
	for _, e := range r.entries {
		if e.dirOnly && !isDir {
			continue
		}
		if e.matches(relPath) {
			ignored = !e.negated
		}
	}
	return ignored
}
