package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var spinnerFrames = []string{"-", "\\", "|", "/"}

type row struct {
	label string
	count int
	style lipgloss.Style
}

func (m uiModel) View() string {
	sections := []string{m.headerView(), m.countsView()}
	if hot := m.stats.hotFiles(maxHotFiles); len(hot) > 0 {
		sections = append(sections, m.hotFilesView(hot))
	}
	if m.showDetails {
		sections = append(sections, m.eventsView())
	}
	help := "d toggle details"
	if m.done {
		help = "Press q to close"
	}
	sections = append(sections, helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m uiModel) headerView() string {
	lines := []string{titleStyle.Render("Custom Security Scan")}
	if m.state == stateRunning {
		frame := spinnerFrames[m.tick%len(spinnerFrames)]
		lines = append(lines, fmt.Sprintf("Active: %s %s", runningStyle.Render(frame), orDash(m.clip(m.current))))
	}
	lines = append(lines,
		fmt.Sprintf("Root: %s", orDash(m.root)),
		fmt.Sprintf("Status: %s", stateStyle(m.state).Render(strings.ToUpper(string(m.state)))),
		fmt.Sprintf("Findings: %d", m.stats.findings),
		fmt.Sprintf("Elapsed: %s", m.elapsed()),
		"",
	)
	return strings.Join(lines, "\n")
}

func (m uiModel) countsView() string {
	rows := m.rows()
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Files", "Count").
		StyleFunc(func(r, _ int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle.PaddingRight(2)
			}
			return rows[r].style.PaddingRight(2)
		})
	for _, r := range rows {
		t.Row(r.label, strconv.Itoa(r.count))
	}
	return t.Render()
}

func (m uiModel) hotFilesView(hot []hotFile) string {
	lines := []string{headerStyle.Render("Top Files")}
	for _, h := range hot {
		lines = append(lines, fmt.Sprintf("%4d  %s", h.count, m.clip(h.path)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m uiModel) eventsView() string {
	lines := []string{headerStyle.Render("Recent Events")}
	if len(m.logLines) == 0 {
		lines = append(lines, idleStyle.Render("No events yet."))
	}
	for _, l := range m.logLines {
		lines = append(lines, m.clip(l))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m uiModel) rows() []row {
	s := m.stats
	out := []row{{label: "scanned", count: s.scanned, style: okStyle}}
	reasons := make([]string, 0, len(s.skipped))
	for reason := range s.skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		out = append(out, row{label: "skipped " + reason, count: s.skipped[reason], style: idleStyle})
	}
	if s.suppressed > 0 {
		out = append(out, row{label: "findings suppressed", count: s.suppressed, style: idleStyle})
	}
	if s.timeouts > 0 {
		out = append(out, row{label: "rule timeouts", count: s.timeouts, style: warnStyle})
	}
	if s.errors > 0 {
		out = append(out, row{label: "errors", count: s.errors, style: errorStyle})
	}
	return out
}

// clip keeps a line within the terminal width once it is known.
func (m uiModel) clip(s string) string {
	if m.width <= 0 || lipgloss.Width(s) <= m.width {
		return s
	}
	r := []rune(s)
	if m.width < 4 || len(r) <= m.width {
		return s
	}
	return string(r[:m.width-3]) + "..."
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func stateStyle(s runState) lipgloss.Style {
	switch s {
	case stateClean:
		return okStyle
	case statePartial, stateStopped:
		return warnStyle
	case stateRunning:
		return runningStyle
	default:
		return idleStyle
	}
}
