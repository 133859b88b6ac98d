package tui

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
)

type Options struct {
	Events <-chan progress.Event
	// Input and Output default to the process terminal. Setting Output also
	// keeps the program out of the alternate screen.
	Input  io.Reader
	Output io.Writer
}

// Run renders scan progress and blocks until the events channel is closed.
func Run(opts Options) error {
	if opts.Events == nil {
		return errors.New("tui events channel is required")
	}

	var progOpts []tea.ProgramOption
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	} else {
		progOpts = append(progOpts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(newModel(opts.Events), progOpts...).Run()
	return err
}
