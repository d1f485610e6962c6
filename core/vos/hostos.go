package vos

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/abiosoft/readline"
	"github.com/spf13/afero"
)

// HostOS is a VOS backed by the running process.
type HostOS struct {
	fs afero.Fs
}

var _ VOS = (*HostOS)(nil)

// NewHostOS creates a VOS over the real operating system.
func NewHostOS() *HostOS {
	return &HostOS{fs: afero.NewOsFs()}
}

func (*HostOS) Stdin() io.ReadCloser { return os.Stdin }
func (*HostOS) Stdout() io.Writer    { return os.Stdout }
func (*HostOS) Stderr() io.Writer    { return os.Stderr }

func (*HostOS) Environ() []string                   { return os.Environ() }
func (*HostOS) Getenv(key string) string            { return os.Getenv(key) }
func (*HostOS) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (*HostOS) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (*HostOS) Unsetenv(key string) error           { return os.Unsetenv(key) }

func (h *HostOS) Fs() afero.Fs                           { return h.fs }
func (*HostOS) Getwd() (string, error)                   { return os.Getwd() }
func (*HostOS) Chdir(dir string) error                   { return os.Chdir(dir) }
func (*HostOS) EvalSymlinks(path string) (string, error) { return filepath.EvalSymlinks(path) }

// IsTerminal implements VOS.IsTerminal.
func (*HostOS) IsTerminal() bool {
	return readline.IsTerminal(int(os.Stdin.Fd()))
}

// Run implements VProc.Run using os/exec. It blocks until the child exits;
// there is no timeout.
func (*HostOS) Run(cmd *Cmd) (int, error) {
	// Build the exec.Cmd by hand so Path isn't looked up a second time.
	child := &exec.Cmd{
		Path:   cmd.Path,
		Args:   cmd.Args,
		Dir:    cmd.Dir,
		Env:    cmd.Env,
		Stdin:  cmd.Stdin,
		Stdout: cmd.Stdout,
		Stderr: cmd.Stderr,
	}

	err := child.Run()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, &SpawnError{Path: cmd.Path, Err: err}
	}
}
