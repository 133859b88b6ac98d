package rules

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single rule's search over one file.
const DefaultMatchTimeout = 5 * time.Second

// Compiled pairs a rule with its ready-to-run expression.
type Compiled struct {
	Rule
	Regex *regexp2.Regexp
}

// CompileError reports a rule whose pattern does not compile. It is a
// configuration defect and aborts the run before any file is read.
type CompileError struct {
	Rule string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile rule %q: %v", e.Rule, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compile compiles every rule in table order. A non-positive timeout falls
// back to DefaultMatchTimeout.
func Compile(t Table, timeout time.Duration) ([]Compiled, error) {
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	out := make([]Compiled, 0, len(t))
	for _, r := range t {
		re, err := CompilePattern(r.Pattern, timeout)
		if err != nil {
			return nil, &CompileError{Rule: r.Name, Err: err}
		}
		out = append(out, Compiled{Rule: r, Regex: re})
	}
	return out, nil
}

// CompilePattern compiles pattern with ^ and $ anchoring at line boundaries.
// A dot never crosses a newline unless the pattern enables (?s).
func CompilePattern(pattern string, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, regexp2.Multiline)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}
