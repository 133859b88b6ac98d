package intake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
)

func writeFiles(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(body), 0o644))
	}
}

type recorder struct {
	events []progress.Event
}

func (r *recorder) Emit(e progress.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) skipped(reason string) []string {
	var out []string
	for _, e := range r.events {
		if e.Type == progress.EventFileSkipped && e.Reason == reason {
			out = append(out, e.Path)
		}
	}
	return out
}

func collect(w *Walker) []string {
	var out []string
	for c := range w.Files() {
		out = append(out, c.Path)
	}
	return out
}

func defaultOptions() Options {
	return Options{Root: "proj", ExclusionConfig: DefaultExclusions()}
}

func TestWalker_TopDownOrder(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"b.py":           "",
		"a.js":           "",
		"sub/z.go":       "",
		"sub/deep/y.ts":  "",
		"alpha/x.php":    "",
		"README.md":      "",
		"sub/notes.txt":  "",
		"sub/header.h":   "",
		"sub/main.cpp":   "",
		"sub/deep/k.tsx": "",
	})

	w := NewWalker(fs, defaultOptions(), nil)
	got := collect(w)

	assert.Equal(t, []string{
		"a.js",
		"b.py",
		"alpha/x.php",
		"sub/header.h",
		"sub/main.cpp",
		"sub/z.go",
		"sub/deep/k.tsx",
		"sub/deep/y.ts",
	}, got)
	assert.Equal(t, 8, w.Walked())
}

func TestWalker_DisplayPathJoinsRoot(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"src/app.py": ""})

	w := NewWalker(fs, defaultOptions(), nil)
	var got []Candidate
	for c := range w.Files() {
		got = append(got, c)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "src/app.py", got[0].Path)
	assert.Equal(t, filepath.Join("proj", "src", "app.py"), got[0].Display)
}

func TestWalker_ExcludedDirsArePruned(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"node_modules/lib/index.js": "",
		"src/node_modules/x.js":     "",
		".git/hooks/pre-commit.py":  "",
		"venv/lib/site.py":          "",
		"src/ok.js":                 "",
	})

	rec := &recorder{}
	w := NewWalker(fs, defaultOptions(), rec)

	assert.Equal(t, []string{"src/ok.js"}, collect(w))
	assert.Equal(t, 1, w.Walked())
	assert.Empty(t, rec.events, "pruned directories are not reported")
}

func TestWalker_ExcludedFilesUseSubstringMatch(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"tests/test_vulnerable_code.py":         "",
		"tests/old_test_vulnerable_code.py":     "",
		"tests/security_test_samples.py.bak.py": "",
		"tests/real_test.py":                    "",
	})

	rec := &recorder{}
	w := NewWalker(fs, defaultOptions(), rec)

	assert.Equal(t, []string{"tests/real_test.py"}, collect(w))
	assert.Equal(t, 4, w.Walked())
	assert.ElementsMatch(t, []string{
		filepath.Join("proj", "tests", "test_vulnerable_code.py"),
		filepath.Join("proj", "tests", "old_test_vulnerable_code.py"),
		filepath.Join("proj", "tests", "security_test_samples.py.bak.py"),
	}, rec.skipped(progress.ReasonExcludedFile))
}

func TestWalker_ExtensionsAreCaseSensitive(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"upper.PY": "",
		"lower.py": "",
		"c.C":      "",
	})

	assert.Equal(t, []string{"lower.py"}, collect(NewWalker(fs, defaultOptions(), nil)))
}

func TestWalker_CustomExtensions(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"a.py":  "",
		"b.tf":  "",
		"c.yml": "",
	})

	opts := defaultOptions()
	opts.Extensions = []string{".tf", ".yml"}
	assert.Equal(t, []string{"b.tf", "c.yml"}, collect(NewWalker(fs, opts, nil)))
}

func TestWalker_IgnoreFile(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"fixtures/bad.py":      "",
		"src/gen/out.go":       "",
		"src/gen/keep.go":      "",
		"src/app.go":           "",
		"src/app_generated.go": "",
	})

	opts := defaultOptions()
	opts.Ignore = ParseIgnorePatterns([]string{
		"fixtures/",
		"*_generated.go",
		"src/gen/*",
		"!src/gen/keep.go",
	})

	rec := &recorder{}
	got := collect(NewWalker(fs, opts, rec))

	assert.Equal(t, []string{"src/app.go", "src/gen/keep.go"}, got)
	assert.ElementsMatch(t, []string{
		filepath.Join("proj", "src", "app_generated.go"),
		filepath.Join("proj", "src", "gen", "out.go"),
	}, rec.skipped(progress.ReasonIgnoreFile))
}

func TestWalker_SymlinksAreSkipped(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"real/target.py": "",
	})
	require.NoError(t, fs.Symlink("real/target.py", "link.py"))
	require.NoError(t, fs.Symlink("real", "linkdir"))

	rec := &recorder{}
	got := collect(NewWalker(fs, defaultOptions(), rec))

	assert.Equal(t, []string{"real/target.py"}, got)
	assert.Equal(t, []string{filepath.Join("proj", "link.py")}, rec.skipped(progress.ReasonSymlink))
}

func TestWalker_EarlyStop(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"a.py":     "",
		"b.py":     "",
		"sub/c.py": "",
	})

	w := NewWalker(fs, defaultOptions(), nil)
	var got []string
	for c := range w.Files() {
		got = append(got, c.Path)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a.py", "b.py"}, got)
}

func TestWalker_Restartable(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{"a.py": "", "sub/b.go": ""})

	w := NewWalker(fs, defaultOptions(), nil)
	first := collect(w)
	second := collect(w)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, w.Walked())
}

func TestWalker_EmptyRoot(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/", 0o755))

	rec := &recorder{}
	w := NewWalker(fs, defaultOptions(), rec)
	assert.Empty(t, collect(w))
	assert.Zero(t, w.Walked())
	assert.Empty(t, rec.events)
}

type failingDirFS struct {
	billy.Filesystem
	bad string
}

func (f failingDirFS) ReadDir(p string) ([]os.FileInfo, error) {
	if p == f.bad {
		return nil, errors.New("permission denied")
	}
	return f.Filesystem.ReadDir(p)
}

func TestWalker_UnreadableDirectoryContinues(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"locked/secret.py": "",
		"open/ok.py":       "",
	})

	rec := &recorder{}
	got := collect(NewWalker(failingDirFS{Filesystem: fs, bad: "locked"}, defaultOptions(), rec))

	assert.Equal(t, []string{"open/ok.py"}, got)
	require.Len(t, rec.events, 1)
	assert.Equal(t, progress.EventDirError, rec.events[0].Type)
	assert.Equal(t, filepath.Join("proj", "locked"), rec.events[0].Path)
	assert.Equal(t, "permission denied", rec.events[0].Error)
}
