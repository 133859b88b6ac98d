// Package report aggregates findings into a Report and serializes it.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/redact"
)

// DefaultOutput is the report path used when none is configured.
const DefaultOutput = "custom-security-results.json"

// ErrWrite wraps every failure to persist a report.
var ErrWrite = errors.New("write report")

type Format string

const (
	FormatJSON     Format = "json"
	FormatSARIF    Format = "sarif"
	FormatMarkdown Format = "markdown"
)

var Formats = []Format{FormatJSON, FormatSARIF, FormatMarkdown}

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported report format %q (want json, sarif or markdown)", raw)
}

// Build computes the report for an ordered finding sequence. Severity
// buckets are exact-match filters over the findings, so a finding with a
// severity outside the four known values is counted only in Total.
func Build(findings []model.Finding, patterns []string, walked int, skipped map[string]int) model.Report {
	if findings == nil {
		findings = []model.Finding{}
	}
	if patterns == nil {
		patterns = []string{}
	}

	files := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		files[f.File] = struct{}{}
	}

	var skips map[string]int
	for reason, n := range skipped {
		if n <= 0 {
			continue
		}
		if skips == nil {
			skips = make(map[string]int, len(skipped))
		}
		skips[reason] = n
	}

	return model.Report{
		Findings: findings,
		Summary: model.Summary{
			Total:    len(findings),
			Critical: countSeverity(findings, model.SeverityCritical),
			High:     countSeverity(findings, model.SeverityHigh),
			Medium:   countSeverity(findings, model.SeverityMedium),
			Low:      countSeverity(findings, model.SeverityLow),
		},
		ScanInfo: model.ScanInfo{
			TotalFilesScanned: len(files),
			PatternsUsed:      patterns,
			FilesWalked:       walked,
			FilesSkipped:      skips,
		},
	}
}

func countSeverity(findings []model.Finding, sev model.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

type WriteOptions struct {
	Format Format
	Redact bool
	// ToolVersion is recorded in SARIF output.
	ToolVersion string
}

// Write serializes r in the requested format and stores it atomically at
// name. Every returned error wraps ErrWrite.
func Write(fs billy.Filesystem, name string, r model.Report, opts WriteOptions) error {
	if opts.Redact {
		r = Redacted(r)
	}
	var err error
	switch opts.Format {
	case FormatJSON, "":
		err = WriteJSON(fs, name, r)
	case FormatSARIF:
		err = WriteSARIF(fs, name, r, opts.ToolVersion)
	case FormatMarkdown:
		err = WriteMarkdown(fs, name, r)
	default:
		err = fmt.Errorf("unsupported report format %q", opts.Format)
	}
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrWrite, name, err)
	}
	return nil
}

// Redacted returns a copy of r with secret values masked in every finding.
func Redacted(r model.Report) model.Report {
	r.Findings = redact.Findings(r.Findings)
	return r
}
