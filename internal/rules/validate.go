package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidRule = errors.New("invalid rule")

var (
	ruleNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
	cwePattern      = regexp.MustCompile(`^CWE-[0-9]+$`)
)

// NormalizeRule trims whitespace and canonicalizes severity/CWE casing.
func NormalizeRule(r Rule) Rule {
	r.Name = strings.TrimSpace(r.Name)
	r.Pattern = strings.TrimSpace(r.Pattern)
	r.Severity = r.Severity.Normalize()
	r.CWE = strings.ToUpper(strings.TrimSpace(r.CWE))
	r.Description = strings.TrimSpace(r.Description)
	return r
}

// ValidateRule checks the metadata of a single rule. Pattern syntax is
// checked separately by Compile.
func ValidateRule(r Rule) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	}
	if !ruleNamePattern.MatchString(r.Name) {
		return fmt.Errorf("%w: name %q must match %s", ErrInvalidRule, r.Name, ruleNamePattern.String())
	}
	if r.Pattern == "" {
		return fmt.Errorf("%w: rule %q: pattern is required", ErrInvalidRule, r.Name)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: rule %q: unknown severity %q", ErrInvalidRule, r.Name, r.Severity)
	}
	if !cwePattern.MatchString(r.CWE) {
		return fmt.Errorf("%w: rule %q: cwe %q must look like CWE-123", ErrInvalidRule, r.Name, r.CWE)
	}
	if r.Description == "" {
		return fmt.Errorf("%w: rule %q: description is required", ErrInvalidRule, r.Name)
	}
	return nil
}

// Validate checks every rule and rejects duplicate names.
func (t Table) Validate() error {
	seen := make(map[string]struct{}, len(t))
	for _, r := range t {
		if err := ValidateRule(r); err != nil {
			return err
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return nil
}
