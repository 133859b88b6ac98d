package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/config"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
)

var ruleHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var ruleCellStyle = lipgloss.NewStyle().Padding(0, 1)

type rulesFlags struct {
	configPath   string
	rulesFile    string
	disableRules []string
	patterns     bool
}

func newRulesCmd() *cobra.Command {
	var f rulesFlags
	c := &cobra.Command{
		Use:   "rules",
		Short: "Print the effective rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRules(cmd, f)
		},
	}
	flags := c.Flags()
	flags.StringVar(&f.configPath, "config", "", "Config file layered over ~/.secscan and ./.secscan config")
	flags.StringVar(&f.rulesFile, "rules-file", "", "YAML file with additional or overriding rules")
	flags.StringSliceVar(&f.disableRules, "disable-rule", nil, "Disable a rule by name (repeatable or comma-separated)")
	flags.BoolVar(&f.patterns, "patterns", false, "Include the regular expression of each rule")
	return c
}

func runRules(cmd *cobra.Command, f rulesFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	var overlay config.Config
	if cmd.Flags().Changed("rules-file") {
		overlay.RulesFile = &f.rulesFile
	}
	if cmd.Flags().Changed("disable-rule") {
		overlay.DisableRules = append(append([]string{}, cfg.DisableRules...), f.disableRules...)
	}
	settings, err := config.Merge(cfg, overlay).Resolve()
	if err != nil {
		return err
	}

	t, err := rules.Resolve(settings.RulesFile, settings.DisableRules)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderRules(t, f.patterns))
	return err
}

func renderRules(t rules.Table, withPatterns bool) string {
	headers := []string{"Rule", "Severity", "CWE", "Description"}
	if withPatterns {
		headers = append(headers, "Pattern")
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return ruleHeaderStyle
			}
			return ruleCellStyle
		})
	for _, r := range t {
		cells := []string{r.Name, string(r.Severity), r.CWE, r.Description}
		if withPatterns {
			cells = append(cells, r.Pattern)
		}
		tbl.Row(cells...)
	}
	return tbl.Render()
}
