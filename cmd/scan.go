package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/config"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/logging"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/report"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/scan"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/tui"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/version"
)

type scanFlags struct {
	configPath   string
	out          string
	format       string
	rulesFile    string
	disableRules []string
	matchTimeout time.Duration
	maxFileBytes int64
	redact       bool
	noIgnoreFile bool
	enableTUI    bool
	disableTUI   bool
	noColor      bool
	debug        bool
	verbose      bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags
	c := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a source tree and write a findings report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, f)
		},
	}

	flags := c.Flags()
	flags.StringVar(&f.configPath, "config", "", "Config file layered over ~/.secscan and ./.secscan config")
	flags.StringVarP(&f.out, "out", "o", report.DefaultOutput, "Report output path")
	flags.StringVarP(&f.format, "format", "f", string(report.FormatJSON), "Report format: json|sarif|markdown")
	flags.StringVar(&f.rulesFile, "rules-file", "", "YAML file with additional or overriding rules")
	flags.StringSliceVar(&f.disableRules, "disable-rule", nil, "Disable a rule by name (repeatable or comma-separated)")
	flags.DurationVar(&f.matchTimeout, "match-timeout", rules.DefaultMatchTimeout, "Per-rule match time budget for one file")
	flags.Int64Var(&f.maxFileBytes, "max-file-bytes", 0, "Skip files larger than this many bytes (0 disables the limit)")
	flags.BoolVar(&f.redact, "redact", false, "Mask secret values in the written report")
	flags.BoolVar(&f.noIgnoreFile, "no-ignore-file", false, "Do not read .secscanignore from the scan root")
	flags.BoolVar(&f.enableTUI, "tui", false, "Enable interactive terminal UI")
	flags.BoolVar(&f.disableTUI, "no-tui", false, "Disable interactive terminal UI")
	flags.BoolVar(&f.noColor, "no-color", false, "Disable coloured output")
	flags.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "List every finding after the summary")
	return c
}

func runScan(cmd *cobra.Command, args []string, f scanFlags) error {
	if f.enableTUI && f.disableTUI {
		return errors.New("cannot set both --tui and --no-tui")
	}

	fileCfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	settings, err := config.Merge(fileCfg, flagOverlay(cmd, args, f, fileCfg)).Resolve()
	if err != nil {
		return err
	}

	table, err := rules.Resolve(settings.RulesFile, settings.DisableRules)
	if err != nil {
		return err
	}

	rootAbs, err := filepath.Abs(settings.Root)
	if err != nil {
		return fmt.Errorf("resolve scan root %s: %w", settings.Root, err)
	}
	info, err := os.Stat(rootAbs)
	if err != nil {
		return fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", settings.Root)
	}

	stdout := cmd.OutOrStdout()
	useTUI := isTerminal(stdout) && isTerminal(os.Stderr) && isTerminal(os.Stdin)
	if f.enableTUI {
		useTUI = true
	}
	if f.disableTUI {
		useTUI = false
	}
	color := isTerminal(stdout) && !f.noColor && !noColorEnv()

	log, err := logging.New(f.debug, useTUI)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	opts := scan.Options{
		FS:           osfs.New(rootAbs, osfs.WithBoundOS()),
		Root:         settings.Root,
		Rules:        table,
		MatchTimeout: settings.MatchTimeout,
		Extensions:   settings.Extensions,
		Exclusions:   settings.Exclusions,
		Markers:      settings.Markers,
		MaxFileBytes: settings.MaxFileBytes,
		NoIgnoreFile: f.noIgnoreFile,
	}
	log.Infow("Starting custom security analysis...", "root", settings.Root, "rules", len(table))

	result, err := runWithProgress(cmd.Context(), opts, log, useTUI)
	if err != nil {
		return err
	}

	writeErr := writeReport(settings.Output, result.Report, report.WriteOptions{
		Format:      settings.Format,
		Redact:      settings.Redact,
		ToolVersion: version.Version,
	})

	// The summary is printed even when the report could not be written.
	fmt.Fprint(stdout, scan.FormatSummary(result.Report, summaryOutput(settings.Output, writeErr), color))
	if settings.Verbose {
		fmt.Fprintln(stdout)
		fmt.Fprint(stdout, scan.FormatFindings(result.Report.Findings, true, color))
	}
	return writeErr
}

func runWithProgress(ctx context.Context, opts scan.Options, log *zap.SugaredLogger, useTUI bool) (scan.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logSink := progress.NewLogSink(log)
	if !useTUI {
		opts.Sink = logSink
		return scan.Run(ctx, opts)
	}

	events := make(chan progress.Event, 128)
	opts.Sink = progress.Multi(logSink, progress.NewChannelSink(events))

	type runResult struct {
		result scan.Result
		err    error
	}
	runDone := make(chan runResult, 1)
	go func() {
		defer close(events)
		result, err := scan.Run(ctx, opts)
		runDone <- runResult{result: result, err: err}
	}()

	if err := tui.Run(tui.Options{Events: events}); err != nil {
		return scan.Result{}, err
	}
	res := <-runDone
	return res.result, res.err
}

// flagOverlay turns explicitly set flags into the highest config layer.
func flagOverlay(cmd *cobra.Command, args []string, f scanFlags, base config.Config) config.Config {
	var overlay config.Config
	flags := cmd.Flags()
	if len(args) == 1 {
		overlay.Root = &args[0]
	}
	if flags.Changed("out") {
		overlay.Output = &f.out
	}
	if flags.Changed("format") {
		overlay.Format = &f.format
	}
	if flags.Changed("rules-file") {
		overlay.RulesFile = &f.rulesFile
	}
	if flags.Changed("disable-rule") {
		overlay.DisableRules = append(append([]string{}, base.DisableRules...), f.disableRules...)
	}
	if flags.Changed("match-timeout") {
		d := f.matchTimeout.String()
		overlay.MatchTimeout = &d
	}
	if flags.Changed("max-file-bytes") {
		overlay.MaxFileBytes = &f.maxFileBytes
	}
	if flags.Changed("redact") {
		overlay.Redact = &f.redact
	}
	if flags.Changed("verbose") {
		overlay.Verbose = &f.verbose
	}
	return overlay
}

func writeReport(path string, r model.Report, opts report.WriteOptions) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", report.ErrWrite, path, err)
	}
	fs := osfs.New(string(filepath.Separator), osfs.WithBoundOS())
	return report.Write(fs, abs, r, opts)
}

func summaryOutput(path string, writeErr error) string {
	if writeErr != nil {
		return ""
	}
	return path
}
