package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/safefile"
)

// SARIF v2.1.0 types, the subset read by GitHub Code Scanning.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name,omitempty"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	DefaultConfig    *sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
	Properties       *sarifRuleProps     `json:"properties,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProps struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID     string           `json:"ruleId"`
	RuleIndex  int              `json:"ruleIndex"`
	Level      string           `json:"level"`
	Message    sarifMessage     `json:"message"`
	Locations  []sarifLocation  `json:"locations,omitempty"`
	Properties *sarifProperties `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int           `json:"startLine"`
	Snippet   *sarifMessage `json:"snippet,omitempty"`
}

type sarifProperties struct {
	Severity string `json:"severity,omitempty"`
	CWE      string `json:"cwe,omitempty"`
}

func WriteSARIF(fs billy.Filesystem, name string, r model.Report, toolVersion string) error {
	log := buildSARIF(r, toolVersion)
	b, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif report: %w", err)
	}
	if err := safefile.WriteFileAtomic(fs, name, b, 0o600); err != nil {
		return fmt.Errorf("write sarif report: %w", err)
	}
	return nil
}

func buildSARIF(r model.Report, toolVersion string) sarifLog {
	ruleIndex := map[string]int{}
	rules := []sarifRule{}
	results := []sarifResult{}

	for _, f := range r.Findings {
		ruleID := f.Rule
		if ruleID == "" {
			ruleID = "secscan-finding"
		}

		idx, seen := ruleIndex[ruleID]
		if !seen {
			idx = len(rules)
			ruleIndex[ruleID] = idx
			rule := sarifRule{
				ID:               ruleID,
				Name:             ruleID,
				ShortDescription: sarifMessage{Text: f.Description},
				DefaultConfig:    &sarifDefaultConfig{Level: mapSeverityToSARIF(f.Severity)},
			}
			if tags := cweTags(f.CWE); len(tags) > 0 {
				rule.Properties = &sarifRuleProps{Tags: tags}
			}
			rules = append(rules, rule)
		}

		messageText := f.Description
		if messageText == "" {
			messageText = ruleID
		}

		var locations []sarifLocation
		if uri := strings.TrimSpace(f.File); uri != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(strings.TrimPrefix(uri, "./"))},
				},
			}
			if f.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{StartLine: f.Line}
				if f.Match != "" {
					loc.PhysicalLocation.Region.Snippet = &sarifMessage{Text: f.Match}
				}
			}
			locations = append(locations, loc)
		}

		results = append(results, sarifResult{
			RuleID:    ruleID,
			RuleIndex: idx,
			Level:     mapSeverityToSARIF(f.Severity),
			Message:   sarifMessage{Text: messageText},
			Locations: locations,
			Properties: &sarifProperties{
				Severity: string(f.Severity),
				CWE:      f.CWE,
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:    "secscan",
					Version: toolVersion,
					Rules:   rules,
				},
			},
			Results: results,
		}},
	}
}

func cweTags(cwe string) []string {
	cwe = strings.TrimSpace(cwe)
	if cwe == "" {
		return nil
	}
	return []string{"security", "external/cwe/" + strings.ToLower(cwe)}
}

func mapSeverityToSARIF(sev model.Severity) string {
	switch sev.Normalize() {
	case model.SeverityCritical, model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}
