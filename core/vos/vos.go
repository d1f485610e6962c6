// Package vos is the operating system surface the shell runs against.
//
// Everything the shell needs from the host (standard streams, environment,
// working directory, a filesystem view and a way to run programs) goes
// through a VOS so the dispatch logic can run unchanged over the real
// process or an in-memory fake.
package vos

import (
	"io"

	"github.com/spf13/afero"
)

// VIO holds the standard streams.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.Writer
	Stderr() io.Writer
}

// EnvironFetcher returns environment variables in "key=value" form.
type EnvironFetcher interface {
	Environ() []string
}

// VEnv is a mutable environment.
type VEnv interface {
	EnvironFetcher

	Getenv(key string) string
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// VFS gives access to the filesystem and the working directory.
type VFS interface {
	// Fs is the filesystem directory listings are read from.
	Fs() afero.Fs

	Getwd() (string, error)
	Chdir(dir string) error

	// EvalSymlinks returns the canonical form of an absolute path. It fails
	// if the path doesn't exist.
	EvalSymlinks(path string) (string, error)
}

// VProc runs programs.
type VProc interface {
	// Run spawns cmd and blocks until it exits, returning its exit status.
	// A program that ran and failed is not an error; a program that could
	// not be started is reported as a *SpawnError.
	Run(cmd *Cmd) (int, error)
}

// VOS provides a virtual OS interface.
type VOS interface {
	VIO
	VEnv
	VFS
	VProc

	// IsTerminal reports whether stdin is an interactive terminal.
	IsTerminal() bool
}

// Cmd is a program invocation, similar to os/exec.Cmd.
type Cmd struct {
	// Path is the resolved path of the program.
	Path string

	// Args holds command line arguments, including the command as Args[0].
	Args []string

	// Dir is the working directory of the child.
	Dir string

	// Env holds "key=value" pairs for the child. If nil the child inherits
	// the environment of the OS.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}
