package core

import (
	"errors"
	"fmt"
	"io"

	"github.com/abiosoft/readline"
	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/josephlewis42/tinysh/core/logger"
	"github.com/josephlewis42/tinysh/core/shell"
	"github.com/josephlewis42/tinysh/core/vos"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
	EnvPath = "PATH"

	DefaultPrompt = "$ "

	// errPrefix starts every message the shell itself prints.
	errPrefix = "shell"
)

// Exit statuses the shell produces itself.
const (
	StatusSuccess    = 0
	StatusFailure    = 1
	StatusMisuse     = 2
	StatusCannotExec = 126
	StatusNotFound   = 127
)

// LineReader supplies input lines to the shell, *readline.Instance is the
// interactive implementation.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Options configures a Shell.
type Options struct {
	// Tokenizer splits lines, defaults to shell.Literal.
	Tokenizer shell.Tokenizer
	// Prompt is printed before each line, defaults to DefaultPrompt.
	Prompt string
	// Color renders the prompt in color.
	Color bool
	// Events receives one event per dispatch, defaults to a nop logger.
	Events *logger.SessionLogger
	// Log receives diagnostics, defaults to discarding them.
	Log *log.Logger
}

// Shell holds all state for a session. It is not safe for concurrent use.
type Shell struct {
	VirtualOS vos.VOS
	Builtins  Registry

	// SearchPath is the list of directories external commands are looked
	// up in. It's loaded from PATH when the shell starts.
	SearchPath []string

	// LastStatus is the exit status of the last dispatched command.
	LastStatus int

	// Set to true to quit the shell
	Quit bool

	tokenize    shell.Tokenizer
	prompt      string
	promptColor *color.Color
	events      *logger.SessionLogger
	log         *log.Logger

	cwd     string
	history []string
	lines   LineReader
}

// NewShell creates a session over the OS. The working directory and search
// path are read once from virtualOS.
func NewShell(virtualOS vos.VOS, opts Options) (*Shell, error) {
	cwd, err := virtualOS.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	s := &Shell{
		VirtualOS:  virtualOS,
		Builtins:   DefaultBuiltins(),
		SearchPath: vos.SplitPath(virtualOS.Getenv(EnvPath)),
		tokenize:   opts.Tokenizer,
		prompt:     opts.Prompt,
		events:     opts.Events,
		log:        opts.Log,
		cwd:        cwd,
	}

	if s.tokenize == nil {
		s.tokenize = shell.Literal
	}
	if s.prompt == "" {
		s.prompt = DefaultPrompt
	}
	if opts.Color {
		// EnableColor skips the NoColor terminal detection.
		s.promptColor = color.New(color.FgGreen, color.Bold)
		s.promptColor.EnableColor()
	}
	if s.events == nil {
		s.events = logger.NewNop().NewSession()
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}

	s.events.SessionStart(cwd)
	s.log.Debug("session started", "dir", cwd, "path", s.SearchPath)
	return s, nil
}

// Cwd returns the shell's working directory.
func (s *Shell) Cwd() string {
	return s.cwd
}

// History returns the lines read so far.
func (s *Shell) History() []string {
	return s.history
}

// Prompt returns the prompt to print before the next line.
func (s *Shell) Prompt() string {
	if s.promptColor != nil {
		return s.promptColor.Sprint(s.prompt)
	}
	return s.prompt
}

// Run reads and executes lines until exit is called or input ends, then
// returns the status of the last command.
func (s *Shell) Run(lines LineReader) int {
	s.lines = lines
	defer func() { s.lines = nil }()

	for !s.Quit {
		lines.SetPrompt(s.Prompt())
		line, err := lines.Readline()

		switch {
		case err == io.EOF:
			s.Quit = true // Input closed, quit.
			continue

		case errors.Is(err, readline.ErrInterrupt):
			// Interrupt clears line.
			continue

		case err != nil:
			s.log.Error("reading input", "err", err)
			s.Quit = true
			continue
		}

		s.history = append(s.history, line)
		s.RunLine(line)
	}

	s.events.SessionEnd(s.LastStatus)
	return s.LastStatus
}

// RunCommand runs a single line as the whole session and returns its
// status.
func (s *Shell) RunCommand(line string) int {
	s.history = append(s.history, line)
	s.RunLine(line)

	s.events.SessionEnd(s.LastStatus)
	return s.LastStatus
}

// RunLine tokenizes and dispatches one line. Blank lines are skipped and
// leave LastStatus alone.
func (s *Shell) RunLine(line string) int {
	args, err := s.tokenize(line)
	if err != nil {
		fmt.Fprintf(s.VirtualOS.Stderr(), "%s: %v\n", errPrefix, err)
		s.events.SyntaxError(line, err)
		s.LastStatus = StatusMisuse
		return s.LastStatus
	}

	if len(args) == 0 {
		return s.LastStatus
	}

	s.LastStatus = s.Dispatch(args)
	return s.LastStatus
}

// Dispatch runs one invocation: a builtin if one has the name, otherwise an
// external program found on the search path. args must not be empty.
func (s *Shell) Dispatch(args []string) int {
	if builtin, ok := s.Builtins.Lookup(args[0]); ok {
		status := builtin.Main(s, args)
		s.events.Dispatch(args, true, "", status)
		return status
	}

	path, status := s.runExternal(args)
	s.events.Dispatch(args, false, path, status)
	return status
}

// LookPath resolves name against the shell's search path.
func (s *Shell) LookPath(name string) (string, error) {
	return vos.LookPath(s.VirtualOS.Fs(), s.SearchPath, name)
}

func (s *Shell) runExternal(args []string) (string, int) {
	name := args[0]

	path, err := s.LookPath(name)
	if err != nil {
		s.log.Debug("lookup failed", "command", name, "err", err)
		fmt.Fprintf(s.VirtualOS.Stderr(), "%s: command not found\n", name)
		return "", StatusNotFound
	}

	s.log.Debug("spawning", "path", path, "args", args)
	status, err := s.VirtualOS.Run(&vos.Cmd{
		Path:   path,
		Args:   args,
		Dir:    s.cwd,
		Env:    s.VirtualOS.Environ(),
		Stdin:  s.VirtualOS.Stdin(),
		Stdout: s.VirtualOS.Stdout(),
		Stderr: s.VirtualOS.Stderr(),
	})
	if err != nil {
		var spawnErr *vos.SpawnError
		if errors.As(err, &spawnErr) {
			err = spawnErr.Err
		}
		fmt.Fprintf(s.VirtualOS.Stderr(), "%s: %s: %v\n", errPrefix, name, err)
		return path, StatusCannotExec
	}

	return path, status
}
