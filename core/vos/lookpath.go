package vos

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// SpawnError is returned by VProc.Run when a program couldn't be started.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// LookPath searches dirs, in order, for an entry named file and returns the
// path of the first match. Directories that can't be listed are skipped.
//
// If file contains a slash, it is tried directly and dirs are not consulted.
// The result may be an absolute path or a path relative to the current
// directory.
func LookPath(fsys afero.Fs, dirs []string, file string) (string, error) {
	if strings.Contains(file, "/") {
		info, err := fsys.Stat(file)
		switch {
		case err != nil:
			return "", fmt.Errorf("%s: %w", file, ErrNotFound)
		case info.IsDir():
			return "", fmt.Errorf("%s: is a directory: %w", file, ErrNotFound)
		}
		return file, nil
	}

	for _, dir := range dirs {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		if dirContains(fsys, dir, file) {
			return filepath.Join(dir, file), nil
		}
	}
	return "", ErrNotFound
}

func dirContains(fsys afero.Fs, dir, file string) bool {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Name() == file && !entry.IsDir() {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err came from a failed LookPath.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
