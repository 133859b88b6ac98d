package report

import (
	"encoding/json"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
)

func TestBuildSARIF_BasicStructure(t *testing.T) {
	r := Build(sampleFindings(), []string{"hardcoded_secrets", "sql_injection", "insecure_random"}, 3, nil)

	log := buildSARIF(r, "1.2.3")

	if log.Version != "2.1.0" {
		t.Fatalf("expected version 2.1.0, got %s", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "secscan" || run.Tool.Driver.Version != "1.2.3" {
		t.Fatalf("unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 3 {
		t.Fatalf("expected 3 distinct rules, got %d", len(run.Tool.Driver.Rules))
	}

	r0 := run.Results[0]
	if r0.RuleID != "hardcoded_secrets" || r0.RuleIndex != 0 {
		t.Fatalf("unexpected first result: %+v", r0)
	}
	if r0.Level != "error" {
		t.Fatalf("expected HIGH to map to error, got %s", r0.Level)
	}
	if len(r0.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(r0.Locations))
	}
	loc := r0.Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "src/app.py" {
		t.Fatalf("unexpected uri: %s", loc.ArtifactLocation.URI)
	}
	if loc.Region == nil || loc.Region.StartLine != 5 {
		t.Fatalf("expected region startLine 5, got %+v", loc.Region)
	}

	r3 := run.Results[3]
	if r3.RuleID != "hardcoded_secrets" || r3.RuleIndex != 0 {
		t.Fatalf("expected repeated rule to reuse index 0, got %+v", r3)
	}

	random := run.Results[2]
	if random.Level != "note" {
		t.Fatalf("expected LOW to map to note, got %s", random.Level)
	}

	rule := run.Tool.Driver.Rules[1]
	if rule.ID != "sql_injection" || rule.Properties == nil {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if rule.Properties.Tags[1] != "external/cwe/cwe-89" {
		t.Fatalf("unexpected cwe tag: %v", rule.Properties.Tags)
	}
}

func TestBuildSARIF_EmptyReport(t *testing.T) {
	log := buildSARIF(Build(nil, nil, 0, nil), "dev")
	b, err := json.Marshal(log)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	runs := decoded["runs"].([]any)
	results := runs[0].(map[string]any)["results"].([]any)
	if len(results) != 0 {
		t.Fatalf("expected empty results array, got %v", results)
	}
}

func TestMapSeverityToSARIF(t *testing.T) {
	tests := []struct {
		sev  model.Severity
		want string
	}{
		{model.SeverityCritical, "error"},
		{model.SeverityHigh, "error"},
		{model.SeverityMedium, "warning"},
		{model.SeverityLow, "note"},
		{"medium", "warning"},
		{"", "note"},
		{"bogus", "note"},
	}
	for _, tt := range tests {
		if got := mapSeverityToSARIF(tt.sev); got != tt.want {
			t.Errorf("mapSeverityToSARIF(%q) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestWriteSARIF_ValidJSON(t *testing.T) {
	fs := memfs.New()
	r := Build(sampleFindings(), nil, 0, nil)
	if err := Write(fs, "out/results.sarif", r, WriteOptions{Format: FormatSARIF, ToolVersion: "dev"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := util.ReadFile(fs, "out/results.sarif")
	if err != nil {
		t.Fatal(err)
	}
	var decoded sarifLog
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("invalid sarif json: %v", err)
	}
	if decoded.Schema == "" || len(decoded.Runs[0].Results) != 4 {
		t.Fatalf("unexpected sarif: %+v", decoded)
	}
}
