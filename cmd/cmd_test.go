package cmd

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/josephlewis42/tinysh/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)

		// Parsed flags persist between executions.
		commandLine, logLevel = "", ""
		rootCmd.Flags().Lookup("command").Changed = false
	})

	return Execute(), out.String()
}

func TestBuiltinsCmd(t *testing.T) {
	status, out := execute(t, "builtins")

	assert.Equal(t, 0, status)
	assert.Equal(t, "cd\nclearpath\necho\nexit\nhelp\nhistory\nloadpath\npwd\ntype\n", out)
}

func TestInitCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")

	status, _ := execute(t, "init", dir)
	require.Equal(t, 0, status)

	_, err := os.Stat(filepath.Join(dir, config.ConfigurationName))
	assert.NoError(t, err)
}

func TestRootCmd_command(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, config.ConfigurationName),
		[]byte("event_log: events.jsonl\n"),
		0600,
	))

	status, _ := execute(t, "--config", dir, "-c", "exit 3")
	assert.Equal(t, 3, status)

	status, out := execute(t, "--config", dir, "events", "report")
	require.Equal(t, 0, status)
	assert.Contains(t, out, "sessions: 1")
	assert.Contains(t, out, "exit: 1")
}

func TestEventsReport_noLog(t *testing.T) {
	status, out := execute(t, "--config", t.TempDir(), "events", "report")

	assert.Equal(t, 1, status)
	assert.Contains(t, out, "no event_log is configured")
}

// withStdio swaps the process stdin for a pipe holding input and stdout for
// a file, returning a function that restores both and yields the output.
func withStdio(t *testing.T, input string) func() string {
	t.Helper()

	stdinR, stdinW, err := os.Pipe()
	require.NoError(t, err)
	_, err = io.WriteString(stdinW, input)
	require.NoError(t, err)
	require.NoError(t, stdinW.Close())

	stdout, err := os.CreateTemp(t.TempDir(), "stdout")
	require.NoError(t, err)

	oldStdin, oldStdout := os.Stdin, os.Stdout
	os.Stdin, os.Stdout = stdinR, stdout

	return func() string {
		os.Stdin, os.Stdout = oldStdin, oldStdout
		stdinR.Close()
		stdout.Close()

		out, err := os.ReadFile(stdout.Name())
		require.NoError(t, err)
		return string(out)
	}
}

func TestRootCmd_pipedInput(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	restore := withStdio(t, "cat\nhello\n")
	status, logs := execute(t, "--config", t.TempDir())
	out := restore()

	assert.Equal(t, 0, status)
	assert.Equal(t, "hello\n", out, "cat reads the line after it")
	assert.Empty(t, logs)
}

func TestRootCmd_pipedExit(t *testing.T) {
	restore := withStdio(t, "echo one\nexit 3\necho never\n")
	status, _ := execute(t, "--config", t.TempDir())
	out := restore()

	assert.Equal(t, 3, status)
	assert.Equal(t, "one\n", out)
}

func TestLogOutput(t *testing.T) {
	_, hasFd := logOutput(os.Stderr).(interface{ Fd() uintptr })
	assert.False(t, hasFd)

	buf := &bytes.Buffer{}
	_, err := logOutput(buf).Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "x", buf.String())
}

func TestNewLogger_levelOverride(t *testing.T) {
	t.Cleanup(func() { logLevel = "" })
	configuration := config.Default()

	logLevel = "debug"
	diagnostics, err := newLogger(io.Discard, configuration)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, diagnostics.GetLevel())

	logLevel = "loud"
	_, err = newLogger(io.Discard, configuration)
	assert.Error(t, err)
}
