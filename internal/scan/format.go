package scan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/sanitize"
)

// Lipgloss styles for each severity level.
var (
	styleCritical = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9"))
	styleHigh     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleMedium   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleLow      = lipgloss.NewStyle().Faint(true)
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	styleFileRef  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleMatch    = lipgloss.NewStyle().Faint(true)
)

// styleSeverity applies the appropriate lipgloss style to a severity label.
func styleSeverity(sev model.Severity, color bool) string {
	label := string(sev.Normalize())
	if label == "" {
		label = "UNKNOWN"
	}
	if !color {
		return label
	}
	switch sev.Normalize() {
	case model.SeverityCritical:
		return styleCritical.Render(label)
	case model.SeverityHigh:
		return styleHigh.Render(label)
	case model.SeverityMedium:
		return styleMedium.Render(label)
	case model.SeverityLow:
		return styleLow.Render(label)
	default:
		return label
	}
}

func render(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// FormatSummary renders the end-of-run summary printed to stdout. The
// output path line only appears when there is something to look at.
func FormatSummary(r model.Report, output string, color bool) string {
	var b strings.Builder
	b.WriteString(render(styleHeader, "Custom security scan completed!", color))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total findings: %d\n", r.Summary.Total)
	fmt.Fprintf(&b, "%s: %d, %s: %d, %s: %d, %s: %d\n",
		styleSeverity(model.SeverityCritical, color), r.Summary.Critical,
		styleSeverity(model.SeverityHigh, color), r.Summary.High,
		styleSeverity(model.SeverityMedium, color), r.Summary.Medium,
		styleSeverity(model.SeverityLow, color), r.Summary.Low,
	)
	if r.Summary.Total > 0 && output != "" {
		fmt.Fprintf(&b, "Results saved to %s\n", output)
	}
	return b.String()
}

// FormatFindings formats findings as severity-sorted terminal output.
// When verbose is true, the matched text is included for each finding.
func FormatFindings(findings []model.Finding, verbose, color bool) string {
	if len(findings) == 0 {
		return "No security issues found.\n"
	}

	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() < sorted[j].Severity.Rank()
	})

	var b strings.Builder
	for _, f := range sorted {
		fmt.Fprintf(&b, "  %s  %s\n", styleSeverity(f.Severity, color), sanitize.Terminal(f.Description, 0))
		loc := fmt.Sprintf("%s:%d", sanitize.Terminal(f.File, sanitize.DefaultMaxLen), f.Line)
		fmt.Fprintf(&b, "    %s  %s %s\n", render(styleFileRef, loc, color), f.Rule, f.CWE)

		if verbose {
			if m := sanitize.Terminal(f.Match, sanitize.DefaultMaxLen); m != "" {
				b.WriteString(fmt.Sprintf("    %s\n", render(styleMatch, "match: "+m, color)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
