package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads custom rules from a YAML file of the form
//
//	rules:
//	  - name: aws_access_key
//	    pattern: 'AKIA[0-9A-Z]{16}'
//	    severity: CRITICAL
//	    cwe: CWE-798
//	    description: AWS access key id
func LoadFile(path string) ([]Rule, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("refusing symlinked rules file: %s", path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return Parse(b, path)
}

// Parse decodes and validates a rules document. source is used in errors only.
func Parse(data []byte, source string) ([]Rule, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse rules %s: %w", source, err)
	}
	out := make([]Rule, 0, len(rf.Rules))
	seen := make(map[string]struct{}, len(rf.Rules))
	for i, r := range rf.Rules {
		r = NormalizeRule(r)
		if err := ValidateRule(r); err != nil {
			return nil, fmt.Errorf("rules %s entry %d: %w", source, i+1, err)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("rules %s entry %d: %w: duplicate rule name %q", source, i+1, ErrInvalidRule, r.Name)
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out, nil
}

// Resolve builds the effective table: built-ins, then the optional custom
// rules file, then removal of disabled names.
func Resolve(rulesFilePath string, disabled []string) (Table, error) {
	table := Default()
	if strings.TrimSpace(rulesFilePath) != "" {
		custom, err := LoadFile(rulesFilePath)
		if err != nil {
			return nil, err
		}
		table = table.Merge(custom)
	}
	for _, name := range disabled {
		if _, ok := table.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: cannot disable unknown rule %q", ErrInvalidRule, name)
		}
	}
	table = table.Without(disabled)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
