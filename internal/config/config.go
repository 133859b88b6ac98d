package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/intake"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/match"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/report"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/suppress"
)

const (
	dirName  = ".secscan"
	fileName = "config.yaml"
)

// Config is one configuration layer. Nil pointers and nil lists mean "not
// set" so a later layer only overrides what it names. Extra* lists are
// appended to the resolved list instead of replacing it.
type Config struct {
	Root              *string  `yaml:"root,omitempty"`
	Output            *string  `yaml:"output,omitempty"`
	Format            *string  `yaml:"format,omitempty"`
	Extensions        []string `yaml:"extensions,omitempty"`
	ExtraExtensions   []string `yaml:"extra_extensions,omitempty"`
	ExcludeDirs       []string `yaml:"exclude_dirs,omitempty"`
	ExtraExcludeDirs  []string `yaml:"extra_exclude_dirs,omitempty"`
	ExcludeFiles      []string `yaml:"exclude_files,omitempty"`
	ExtraExcludeFiles []string `yaml:"extra_exclude_files,omitempty"`
	Markers           []string `yaml:"markers,omitempty"`
	ExtraMarkers      []string `yaml:"extra_markers,omitempty"`
	RulesFile         *string  `yaml:"rules_file,omitempty"`
	DisableRules      []string `yaml:"disable_rules,omitempty"`
	MatchTimeout      *string  `yaml:"match_timeout,omitempty"`
	MaxFileBytes      *int64   `yaml:"max_file_bytes,omitempty"`
	Redact            *bool    `yaml:"redact,omitempty"`
	Verbose           *bool    `yaml:"verbose,omitempty"`
}

// Settings is a fully resolved configuration with every default applied.
type Settings struct {
	Root         string
	Output       string
	Format       report.Format
	Extensions   []string
	Exclusions   intake.ExclusionConfig
	Markers      []string
	RulesFile    string
	DisableRules []string
	MatchTimeout time.Duration
	MaxFileBytes int64
	Redact       bool
	Verbose      bool
}

// Load reads config from layered sources, later layers winning:
//  1. ~/.secscan/config.yaml (global)
//  2. ./.secscan/config.yaml (repo-local)
//  3. explicit, when non-empty
//
// Missing global and local files are ignored; a missing explicit file is
// an error.
func Load(explicit string) (Config, error) {
	home, _ := os.UserHomeDir()
	var globalPath, localPath string
	if home != "" {
		globalPath = filepath.Join(home, dirName, fileName)
	}

	cwd, _ := os.Getwd()
	if cwd != "" {
		localPath = filepath.Join(cwd, dirName, fileName)
	}

	var merged Config

	if globalPath != "" {
		global, err := loadFile(globalPath, true)
		if err != nil {
			return Config{}, fmt.Errorf("load global config %s: %w", globalPath, err)
		}
		merged = Merge(merged, global)
	}

	if localPath != "" && localPath != globalPath {
		local, err := loadFile(localPath, true)
		if err != nil {
			return Config{}, fmt.Errorf("load local config %s: %w", localPath, err)
		}
		merged = Merge(merged, local)
	}

	if explicit = strings.TrimSpace(explicit); explicit != "" {
		cfg, err := loadFile(explicit, false)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", explicit, err)
		}
		merged = Merge(merged, cfg)
	}

	return merged, nil
}

func loadFile(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes one YAML layer. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Config{}, nil
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Merge applies overrides from b onto a. Set fields in b win; extra lists
// accumulate.
func Merge(a, b Config) Config {
	if b.Root != nil {
		a.Root = b.Root
	}
	if b.Output != nil {
		a.Output = b.Output
	}
	if b.Format != nil {
		a.Format = b.Format
	}
	if b.Extensions != nil {
		a.Extensions = b.Extensions
	}
	if b.ExcludeDirs != nil {
		a.ExcludeDirs = b.ExcludeDirs
	}
	if b.ExcludeFiles != nil {
		a.ExcludeFiles = b.ExcludeFiles
	}
	if b.Markers != nil {
		a.Markers = b.Markers
	}
	if b.RulesFile != nil {
		a.RulesFile = b.RulesFile
	}
	if b.DisableRules != nil {
		a.DisableRules = b.DisableRules
	}
	if b.MatchTimeout != nil {
		a.MatchTimeout = b.MatchTimeout
	}
	if b.MaxFileBytes != nil {
		a.MaxFileBytes = b.MaxFileBytes
	}
	if b.Redact != nil {
		a.Redact = b.Redact
	}
	if b.Verbose != nil {
		a.Verbose = b.Verbose
	}
	a.ExtraExtensions = appendCopy(a.ExtraExtensions, b.ExtraExtensions)
	a.ExtraExcludeDirs = appendCopy(a.ExtraExcludeDirs, b.ExtraExcludeDirs)
	a.ExtraExcludeFiles = appendCopy(a.ExtraExcludeFiles, b.ExtraExcludeFiles)
	a.ExtraMarkers = appendCopy(a.ExtraMarkers, b.ExtraMarkers)
	return a
}

func appendCopy(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Resolve fills every unset field from the built-in defaults.
func (c Config) Resolve() (Settings, error) {
	s := Settings{
		Root:         ".",
		Output:       report.DefaultOutput,
		Format:       report.FormatJSON,
		Extensions:   orDefault(c.Extensions, intake.DefaultExtensions),
		Markers:      orDefault(c.Markers, suppress.DefaultMarkers),
		DisableRules: append([]string(nil), c.DisableRules...),
		MatchTimeout: rules.DefaultMatchTimeout,
		MaxFileBytes: match.DefaultMaxFileBytes,
		Exclusions: intake.ExclusionConfig{
			Dirs:  orDefault(c.ExcludeDirs, intake.DefaultExcludedDirs),
			Files: orDefault(c.ExcludeFiles, intake.DefaultExcludedFiles),
		},
	}
	s.Extensions = append(s.Extensions, c.ExtraExtensions...)
	s.Markers = append(s.Markers, c.ExtraMarkers...)
	s.Exclusions.Dirs = append(s.Exclusions.Dirs, c.ExtraExcludeDirs...)
	s.Exclusions.Files = append(s.Exclusions.Files, c.ExtraExcludeFiles...)

	if c.Root != nil && strings.TrimSpace(*c.Root) != "" {
		s.Root = strings.TrimSpace(*c.Root)
	}
	if c.Output != nil && strings.TrimSpace(*c.Output) != "" {
		s.Output = strings.TrimSpace(*c.Output)
	}
	if c.Format != nil {
		f, err := report.ParseFormat(*c.Format)
		if err != nil {
			return Settings{}, err
		}
		s.Format = f
	}
	if c.RulesFile != nil {
		s.RulesFile = strings.TrimSpace(*c.RulesFile)
	}
	if c.MatchTimeout != nil && strings.TrimSpace(*c.MatchTimeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(*c.MatchTimeout))
		if err != nil {
			return Settings{}, fmt.Errorf("invalid match_timeout %q: %w", *c.MatchTimeout, err)
		}
		if d <= 0 {
			return Settings{}, fmt.Errorf("match_timeout must be positive, got %s", d)
		}
		s.MatchTimeout = d
	}
	if c.MaxFileBytes != nil {
		if *c.MaxFileBytes < 0 {
			return Settings{}, fmt.Errorf("max_file_bytes must not be negative, got %d", *c.MaxFileBytes)
		}
		s.MaxFileBytes = *c.MaxFileBytes
	}
	if c.Redact != nil {
		s.Redact = *c.Redact
	}
	if c.Verbose != nil {
		s.Verbose = *c.Verbose
	}
	return s, nil
}

func orDefault(v, def []string) []string {
	if v != nil {
		return append([]string{}, v...)
	}
	return append([]string(nil), def...)
}
