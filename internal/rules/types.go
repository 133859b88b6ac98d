package rules

import (
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
)

// Rule is a named regular-expression detector with its triage metadata.
type Rule struct {
	Name        string         `yaml:"name" json:"name"`
	Pattern     string         `yaml:"pattern" json:"pattern"`
	Severity    model.Severity `yaml:"severity" json:"severity"`
	CWE         string         `yaml:"cwe" json:"cwe"`
	Description string         `yaml:"description" json:"description"`
}

// Table is an insertion-ordered set of rules keyed by name.
type Table []Rule

// Names returns rule names in table order.
func (t Table) Names() []string {
	out := make([]string, 0, len(t))
	for _, r := range t {
		out = append(out, r.Name)
	}
	return out
}

func (t Table) Lookup(name string) (Rule, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Merge returns a copy of t with overrides applied. An override whose name is
// already present replaces that rule in place; new names are appended.
func (t Table) Merge(overrides []Rule) Table {
	out := make(Table, len(t), len(t)+len(overrides))
	copy(out, t)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}

// Without returns a copy of t minus the named rules.
func (t Table) Without(names []string) Table {
	if len(names) == 0 {
		out := make(Table, len(t))
		copy(out, t)
		return out
	}
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := make(Table, 0, len(t))
	for _, r := range t {
		if _, ok := drop[r.Name]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// rulesFile is the top-level YAML structure of a custom rules file.
type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}
