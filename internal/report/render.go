package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/safefile"
)

func WriteJSON(fs billy.Filesystem, name string, r model.Report) error {
	b, err := MarshalJSON(r)
	if err != nil {
		return err
	}
	if err := safefile.WriteFileAtomic(fs, name, b, 0o600); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	return nil
}

// MarshalJSON renders r with two-space indentation and a trailing newline.
func MarshalJSON(r model.Report) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(b, '\n'), nil
}

func WriteMarkdown(fs billy.Filesystem, name string, r model.Report) error {
	content := RenderMarkdown(r)
	if err := safefile.WriteFileAtomic(fs, name, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write report markdown: %w", err)
	}
	return nil
}

func RenderMarkdown(r model.Report) string {
	var b bytes.Buffer

	b.WriteString("# Custom Security Scan\n\n")
	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- Total findings: **%d**\n", r.Summary.Total))
	b.WriteString(fmt.Sprintf("- Severity: critical=%d, high=%d, medium=%d, low=%d\n",
		r.Summary.Critical,
		r.Summary.High,
		r.Summary.Medium,
		r.Summary.Low,
	))
	b.WriteString(fmt.Sprintf("- Files with findings: %d\n", r.ScanInfo.TotalFilesScanned))
	if r.ScanInfo.FilesWalked > 0 {
		b.WriteString(fmt.Sprintf("- Files walked: %d\n", r.ScanInfo.FilesWalked))
	}
	if len(r.ScanInfo.FilesSkipped) > 0 {
		reasons := make([]string, 0, len(r.ScanInfo.FilesSkipped))
		for reason := range r.ScanInfo.FilesSkipped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		parts := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, r.ScanInfo.FilesSkipped[reason]))
		}
		b.WriteString("- Files skipped: " + strings.Join(parts, ", ") + "\n")
	}
	if len(r.ScanInfo.PatternsUsed) > 0 {
		b.WriteString(fmt.Sprintf("- Rules: `%s`\n", strings.Join(r.ScanInfo.PatternsUsed, ", ")))
	}
	b.WriteString("\n")

	if len(r.Findings) == 0 {
		b.WriteString("## Findings\n\nNo security issues found.\n")
		return b.String()
	}

	b.WriteString("## Findings\n\n")
	sorted := make([]model.Finding, len(r.Findings))
	copy(sorted, r.Findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})

	for _, f := range sorted {
		b.WriteString(fmt.Sprintf("### [%s] %s\n\n", strings.ToUpper(string(f.Severity)), sanitizeInline(f.Description)))
		b.WriteString(fmt.Sprintf("- Location: `%s:%d`\n", sanitizeInline(f.File), f.Line))
		b.WriteString(fmt.Sprintf("- Rule: `%s`\n", f.Rule))
		b.WriteString(fmt.Sprintf("- CWE: `%s`\n", f.CWE))
		b.WriteString(fmt.Sprintf("- Match: `%s`\n", inlineCode(f.Match)))
		b.WriteString("\n")
		b.WriteString(codeBlock(f.Context))
		b.WriteString("\n")
	}

	return b.String()
}

func sanitizeInline(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}

func inlineCode(s string) string {
	return strings.ReplaceAll(sanitizeInline(s), "`", "'")
}

// codeBlock fences s with enough backticks that no line inside can close it.
func codeBlock(s string) string {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	return fence + "\n" + strings.TrimRight(s, "\n") + "\n" + fence + "\n"
}
