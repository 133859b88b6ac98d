package tui

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/sanitize"
)

const (
	maxLogLines = 12
	maxHotFiles = 5
)

type runState string

const (
	stateRunning runState = "running"
	stateClean   runState = "success"
	statePartial runState = "partial"
	stateStopped runState = "stopped"
)

type eventMsg struct {
	event progress.Event
	ok    bool
}

type tickMsg time.Time

// scanStats is the running tally the view renders.
type scanStats struct {
	scanned    int
	findings   int
	suppressed int
	timeouts   int
	errors     int
	skipped    map[string]int
	perFile    map[string]int
}

type uiModel struct {
	events <-chan progress.Event

	root       string
	state      runState
	startedAt  time.Time
	finishedAt time.Time
	current    string
	stats      scanStats

	width       int
	showDetails bool
	done        bool
	logLines    []string
	tick        int
}

func newModel(events <-chan progress.Event) uiModel {
	m := uiModel{
		events:      events,
		state:       stateRunning,
		showDetails: true,
		logLines:    make([]string, 0, maxLogLines),
	}
	m.stats.skipped = make(map[string]int)
	m.stats.perFile = make(map[string]int)
	return m
}

func waitForEvent(ch <-chan progress.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{event: ev, ok: ok}
	}
}

func nextTick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), nextTick())
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "d":
			m.showDetails = !m.showDetails
		case "q", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil
	case eventMsg:
		if !msg.ok {
			m.done = true
			if m.state == stateRunning {
				m.state = stateStopped
			}
			return m, tea.Quit
		}
		m.applyEvent(msg.event)
		return m, waitForEvent(m.events)
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, nextTick()
	default:
		return m, nil
	}
}

func (m *uiModel) applyEvent(e progress.Event) {
	s := &m.stats
	switch e.Type {
	case progress.EventScanStarted:
		m.root = sanitize.Terminal(e.Path, sanitize.DefaultMaxLen)
		m.state = stateRunning
		m.startedAt = e.At
	case progress.EventFileScanned:
		s.scanned++
		s.findings += e.FindingCount
		m.current = sanitize.Terminal(e.Path, sanitize.DefaultMaxLen)
		if e.FindingCount == 0 {
			return
		}
		s.perFile[m.current] += e.FindingCount
	case progress.EventFileSkipped:
		s.skipped[e.Reason]++
	case progress.EventFindingSuppressed:
		s.suppressed++
	case progress.EventMatchTimeout:
		s.timeouts++
	case progress.EventFileError, progress.EventDirError:
		s.errors++
	case progress.EventScanFinished:
		s.findings = e.FindingCount
		m.current = ""
		m.finishedAt = e.At
		m.state = stateClean
		if s.errors > 0 || s.timeouts > 0 {
			m.state = statePartial
		}
		m.done = true
	}
	m.logEvent(e)
}

func (m *uiModel) logEvent(e progress.Event) {
	text := progress.Describe(e)
	if e.Type == progress.EventFileScanned {
		text = fmt.Sprintf("%s findings=%d", text, e.FindingCount)
	}
	text = sanitize.Terminal(text, sanitize.DefaultMaxLen)
	if text == "" {
		return
	}
	ts := e.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	m.logLines = append(m.logLines, fmt.Sprintf("[%s] %s", ts.Format("15:04:05"), text))
	if over := len(m.logLines) - maxLogLines; over > 0 {
		m.logLines = m.logLines[over:]
	}
}

type hotFile struct {
	path  string
	count int
}

// hotFiles returns the files with the most findings, highest first and by
// path on ties.
func (s scanStats) hotFiles(limit int) []hotFile {
	out := make([]hotFile, 0, len(s.perFile))
	for p, n := range s.perFile {
		out = append(out, hotFile{path: p, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].path < out[j].path
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m uiModel) elapsed() time.Duration {
	if m.startedAt.IsZero() {
		return 0
	}
	end := m.finishedAt
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return end.Sub(m.startedAt).Round(time.Second)
}
