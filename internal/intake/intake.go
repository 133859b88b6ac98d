// Package intake walks a scan root and yields the files eligible for
// pattern matching.
package intake

import (
	"iter"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
)

// DefaultExtensions are the source file suffixes scanned when none are configured.
var DefaultExtensions = []string{
	".py", ".js", ".ts", ".jsx", ".tsx", ".php", ".java",
	".cs", ".rb", ".go", ".cpp", ".c", ".h",
}

// DefaultExcludedDirs are directory basenames never descended into.
var DefaultExcludedDirs = []string{
	"security-analysis", ".git", "node_modules", "__pycache__", ".venv", "venv",
	"dist", "build", ".next", "coverage", "logs", "tmp", ".pytest_cache",
	".mypy_cache", "vendor", "packages",
}

// DefaultExcludedFiles are substrings that exclude a file when they occur
// anywhere in its display path.
var DefaultExcludedFiles = []string{
	"test_vulnerable_code.py",
	"security_test_samples.py",
	"test_security_analyzer.py",
}

// ExclusionConfig lists what the walker drops before matching.
type ExclusionConfig struct {
	Dirs  []string
	Files []string
}

// DefaultExclusions returns a fresh copy of the built-in exclusion lists.
func DefaultExclusions() ExclusionConfig {
	return ExclusionConfig{
		Dirs:  append([]string(nil), DefaultExcludedDirs...),
		Files: append([]string(nil), DefaultExcludedFiles...),
	}
}

type Options struct {
	// Root is the display prefix joined onto every relative path. The
	// filesystem itself is expected to be rooted there already.
	Root       string
	Extensions []string
	ExclusionConfig
	Ignore *IgnoreRules
}

// Candidate is a file accepted by the walker.
type Candidate struct {
	// Path is relative to the filesystem root, slash separated.
	Path string
	// Display is Root joined with Path, used in findings and events.
	Display string
}

// Walker enumerates candidate files lazily. Files() may be ranged over
// more than once; each range starts a fresh walk.
type Walker struct {
	fs    billy.Filesystem
	opts  Options
	dirs  map[string]struct{}
	sink  progress.Sink
	count int
}

func NewWalker(fs billy.Filesystem, opts Options, sink progress.Sink) *Walker {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Extensions == nil {
		opts.Extensions = DefaultExtensions
	}
	dirs := make(map[string]struct{}, len(opts.Dirs))
	for _, d := range opts.Dirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs[d] = struct{}{}
		}
	}
	return &Walker{fs: fs, opts: opts, dirs: dirs, sink: progress.OrNoop(sink)}
}

// Walked returns how many files with an allowed extension the most recent
// walk visited, whether or not they were then excluded.
func (w *Walker) Walked() int {
	return w.count
}

// Files yields candidates top-down: the files of a directory in name order,
// then each subdirectory in name order.
func (w *Walker) Files() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		w.count = 0
		w.walk(".", yield)
	}
}

func (w *Walker) walk(dir string, yield func(Candidate) bool) bool {
	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		w.sink.Emit(progress.Event{
			Type:  progress.EventDirError,
			Path:  w.display(dir),
			Error: err.Error(),
		})
		return true
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var subdirs []string
	for _, fi := range entries {
		rel := path.Join(dir, fi.Name())
		if fi.IsDir() {
			if w.pruned(fi.Name(), rel) {
				continue
			}
			subdirs = append(subdirs, rel)
			continue
		}
		if !w.allowedExtension(fi.Name()) {
			continue
		}
		w.count++

		c := Candidate{Path: rel, Display: w.display(rel)}
		if fi.Mode()&os.ModeSymlink != 0 {
			w.skip(c, progress.ReasonSymlink)
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		if w.excludedFile(c.Display) {
			w.skip(c, progress.ReasonExcludedFile)
			continue
		}
		if w.opts.Ignore.ShouldIgnore(rel, false) {
			w.skip(c, progress.ReasonIgnoreFile)
			continue
		}
		if !yield(c) {
			return false
		}
	}

	for _, sub := range subdirs {
		if !w.walk(sub, yield) {
			return false
		}
	}
	return true
}

func (w *Walker) pruned(name, rel string) bool {
	if _, ok := w.dirs[name]; ok {
		return true
	}
	return w.opts.Ignore.ShouldIgnore(rel, true)
}

func (w *Walker) allowedExtension(name string) bool {
	for _, ext := range w.opts.Extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func (w *Walker) excludedFile(display string) bool {
	for _, f := range w.opts.Files {
		if f != "" && strings.Contains(display, f) {
			return true
		}
	}
	return false
}

func (w *Walker) skip(c Candidate, reason string) {
	w.sink.Emit(progress.Event{
		Type:   progress.EventFileSkipped,
		Path:   c.Display,
		Reason: reason,
	})
}

func (w *Walker) display(rel string) string {
	if rel == "." {
		return w.opts.Root
	}
	return filepath.Join(w.opts.Root, filepath.FromSlash(rel))
}
