package safefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const tempPrefix = ".secscan-tmp-"

// WriteFileAtomic writes data to a temporary file next to name and renames
// it into place, so readers never observe a partially written report. It
// refuses to write through a symlink or over a directory.
func WriteFileAtomic(fs billy.Filesystem, name string, data []byte, perm os.FileMode) error {
	name, err := cleanPath(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(name)
	if err := ensureDir(fs, dir); err != nil {
		return err
	}

	if info, err := fs.Lstat(name); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("refusing symlinked file target: %s", name)
		}
		if info.IsDir() {
			return fmt.Errorf("refusing directory write target: %s", name)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat write target: %w", err)
	}

	tmp, err := fs.TempFile(dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temporary file: %w", err)
	}
	// Only OS-backed files carry permissions and a durable sync.
	if f, ok := tmp.(interface{ Chmod(os.FileMode) error }); ok {
		if err := f.Chmod(perm); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("chmod temporary file: %w", err)
		}
	}
	if f, ok := tmp.(interface{ Sync() error }); ok {
		if err := f.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("sync temporary file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	if err := fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("replace target file: %w", err)
	}
	cleanup = false
	return nil
}

func cleanPath(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("path is required")
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid path: %s", name)
	}
	return clean, nil
}

// ensureDir creates dir when missing and rejects a symlinked or non-directory
// parent.
func ensureDir(fs billy.Filesystem, dir string) error {
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}
	info, err := fs.Lstat(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat path: %w", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing symlinked path: %s", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}
	return nil
}
