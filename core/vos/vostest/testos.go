// Package vostest provides a deterministic in-memory VOS for tests.
package vostest

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/josephlewis42/tinysh/core/vos"
	"github.com/spf13/afero"
)

// ProcessFunc stands in for a program on the fake filesystem.
type ProcessFunc func(cmd *vos.Cmd) int

// TestOS is a VOS backed by an afero.MemMapFs and in-memory buffers.
type TestOS struct {
	*vos.MapEnv

	StdinBuf  *bytes.Buffer
	StdoutBuf *bytes.Buffer
	StderrBuf *bytes.Buffer

	// Processes maps executable paths to their implementation.
	Processes map[string]ProcessFunc
	// Spawned records every Run call in order.
	Spawned []vos.Cmd
	// SpawnErr, if set, is returned by every Run call.
	SpawnErr error
	Terminal bool

	fs  afero.Fs
	cwd string
}

var _ vos.VOS = (*TestOS)(nil)

// NewTestOS creates a TestOS with HOME=/root, PATH=/usr/bin:/bin and the
// working directory at /root.
func NewTestOS() *TestOS {
	fsys := afero.NewMemMapFs()
	for _, dir := range []string{"/root", "/bin", "/usr/bin", "/tmp"} {
		// MemMapFs never fails to create directories.
		_ = fsys.MkdirAll(dir, 0755)
	}

	env := vos.NewMapEnvFromEnvList([]string{
		"HOME=/root",
		"PATH=/usr/bin:/bin",
		"PWD=/root",
	})

	return &TestOS{
		MapEnv:    env,
		StdinBuf:  &bytes.Buffer{},
		StdoutBuf: &bytes.Buffer{},
		StderrBuf: &bytes.Buffer{},
		Processes: make(map[string]ProcessFunc),
		fs:        fsys,
		cwd:       "/root",
	}
}

// AddExecutable writes an executable at path and registers its behavior.
func (t *TestOS) AddExecutable(path string, proc ProcessFunc) error {
	if err := t.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := afero.WriteFile(t.fs, path, []byte("#!/bin/fake\n"), 0755); err != nil {
		return err
	}
	t.Processes[path] = proc
	return nil
}

func (t *TestOS) Stdin() io.ReadCloser { return io.NopCloser(t.StdinBuf) }
func (t *TestOS) Stdout() io.Writer    { return t.StdoutBuf }
func (t *TestOS) Stderr() io.Writer    { return t.StderrBuf }
func (t *TestOS) Fs() afero.Fs         { return t.fs }
func (t *TestOS) IsTerminal() bool     { return t.Terminal }

// Getwd implements vos.VFS.Getwd.
func (t *TestOS) Getwd() (string, error) {
	return t.cwd, nil
}

// Chdir implements vos.VFS.Chdir.
func (t *TestOS) Chdir(dir string) error {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(t.cwd, dir)
	}
	info, err := t.fs.Stat(dir)
	if err != nil {
		return &fs.PathError{Op: "chdir", Path: dir, Err: fs.ErrNotExist}
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	t.cwd = filepath.Clean(dir)
	return nil
}

// EvalSymlinks implements vos.VFS.EvalSymlinks, MemMapFs has no symlinks so
// this only cleans the path and checks it exists.
func (t *TestOS) EvalSymlinks(path string) (string, error) {
	path = filepath.Clean(path)
	if _, err := t.fs.Stat(path); err != nil {
		return "", &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return path, nil
}

// Run implements vos.VProc.Run.
func (t *TestOS) Run(cmd *vos.Cmd) (int, error) {
	t.Spawned = append(t.Spawned, *cmd)

	if t.SpawnErr != nil {
		return -1, &vos.SpawnError{Path: cmd.Path, Err: t.SpawnErr}
	}

	path := cmd.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cmd.Dir, path)
	}
	proc, ok := t.Processes[path]
	if !ok {
		return -1, &vos.SpawnError{Path: cmd.Path, Err: errors.New("exec format error")}
	}

	return proc(cmd), nil
}

// Output returns and resets everything written to stdout.
func (t *TestOS) Output() string {
	defer t.StdoutBuf.Reset()
	return t.StdoutBuf.String()
}

// ErrOutput returns and resets everything written to stderr.
func (t *TestOS) ErrOutput() string {
	defer t.StderrBuf.Reset()
	return t.StderrBuf.String()
}
