package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/intake"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/match"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/report"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/suppress"
)

// Options configures a scan run.
type Options struct {
	// FS is rooted at the scan root. Root is only used for display paths.
	FS           billy.Filesystem
	Root         string
	Rules        rules.Table
	MatchTimeout time.Duration
	// Nil Extensions and nil exclusion lists select the intake defaults.
	Extensions []string
	Exclusions intake.ExclusionConfig
	// Markers nil selects suppress.DefaultMarkers; an empty slice disables
	// suppression.
	Markers []string
	// MaxFileBytes follows match.Options: zero disables the limit.
	MaxFileBytes int64
	// NoIgnoreFile disables reading .secscanignore from the scan root.
	NoIgnoreFile bool
	Sink         progress.Sink
}

// Result holds the output of a scan run.
type Result struct {
	Report   model.Report
	Duration time.Duration
}

// Run walks the tree, matches every candidate file and builds the report.
//
// Rule and marker compilation failures are returned before any file is
// read. Per-file read errors and pattern timeouts are reported through the
// sink and never abort the run.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.FS == nil {
		return Result{}, fmt.Errorf("scan: filesystem is required")
	}
	table := opts.Rules
	if table == nil {
		table = rules.Default()
	}

	compiled, err := rules.Compile(table, opts.MatchTimeout)
	if err != nil {
		return Result{}, fmt.Errorf("compile rules: %w", err)
	}
	markerSrc := opts.Markers
	if markerSrc == nil {
		markerSrc = suppress.DefaultMarkers
	}
	markers, err := suppress.Compile(markerSrc)
	if err != nil {
		return Result{}, fmt.Errorf("compile markers: %w", err)
	}

	var ignore *intake.IgnoreRules
	if !opts.NoIgnoreFile {
		ignore, err = intake.LoadIgnoreFile(opts.FS, intake.IgnoreFileName)
		if err != nil {
			return Result{}, err
		}
	}

	exclusions := opts.Exclusions
	if exclusions.Dirs == nil {
		exclusions.Dirs = intake.DefaultExcludedDirs
	}
	if exclusions.Files == nil {
		exclusions.Files = intake.DefaultExcludedFiles
	}

	skipped := map[string]int{}
	sink := progress.Multi(progress.SinkFunc(func(e progress.Event) {
		if e.Type == progress.EventFileSkipped {
			skipped[e.Reason]++
		}
	}), progress.OrNoop(opts.Sink))

	walker := intake.NewWalker(opts.FS, intake.Options{
		Root:            opts.Root,
		Extensions:      opts.Extensions,
		ExclusionConfig: exclusions,
		Ignore:          ignore,
	}, sink)
	matcher := match.New(match.Options{
		Rules:        compiled,
		Markers:      markers,
		MaxFileBytes: opts.MaxFileBytes,
	}, sink)

	start := time.Now()
	sink.Emit(progress.Event{Type: progress.EventScanStarted, Path: displayRoot(opts.Root)})

	findings := []model.Finding{}
	for c := range walker.Files() {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("scan cancelled: %w", err)
		}
		fileFindings, scanErr := matcher.ScanFile(opts.FS, c)
		if scanErr != nil && !match.IsTimeout(scanErr) {
			sink.Emit(progress.Event{Type: progress.EventFileError, Path: c.Display, Error: scanErr.Error()})
			sink.Emit(progress.Event{Type: progress.EventFileSkipped, Path: c.Display, Reason: progress.ReasonReadError})
			continue
		}
		sink.Emit(progress.Event{Type: progress.EventFileScanned, Path: c.Display, FindingCount: len(fileFindings)})
		findings = append(findings, fileFindings...)
	}

	elapsed := time.Since(start)
	sink.Emit(progress.Event{
		Type:         progress.EventScanFinished,
		Path:         displayRoot(opts.Root),
		FindingCount: len(findings),
		DurationMS:   elapsed.Milliseconds(),
	})

	return Result{
		Report:   report.Build(findings, table.Names(), walker.Walked(), skipped),
		Duration: elapsed,
	}, nil
}

func displayRoot(root string) string {
	if root == "" {
		return "."
	}
	return root
}
