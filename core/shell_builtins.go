package core

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/tinysh/core/vos"
	"github.com/pborman/getopt/v2"
)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Registry maps builtin names to their implementation.
type Registry map[string]ShellBuiltin

// Lookup finds the builtin with exactly the given name.
func (r Registry) Lookup(name string) (ShellBuiltin, bool) {
	builtin, ok := r[name]
	return builtin, ok
}

// Names returns the sorted builtin names.
func (r Registry) Names() []string {
	var names []string
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultBuiltins returns a new registry holding every builtin.
func DefaultBuiltins() Registry {
	return Registry{
		"cd":        ShellBuiltinFunc(Cd),
		"clearpath": ShellBuiltinFunc(ClearPath),
		"echo":      ShellBuiltinFunc(Echo),
		"exit":      ShellBuiltinFunc(Exit),
		"help":      ShellBuiltinFunc(Help),
		"history":   ShellBuiltinFunc(History),
		"loadpath":  ShellBuiltinFunc(LoadPath),
		"pwd":       ShellBuiltinFunc(Pwd),
		"type":      ShellBuiltinFunc(Type),
	}
}

func (s *Shell) builtinErrorf(builtin, format string, a ...interface{}) {
	fmt.Fprintf(s.VirtualOS.Stderr(), "%s: %s: %s\n", errPrefix, builtin, fmt.Sprintf(format, a...))
}

// Exit quits the shell. With one all-digit argument that is the exit
// status, reduced modulo 256; any other argument is an error but still quits.
func Exit(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		s.Quit = true
		return StatusSuccess
	case 2:
		// handled below
	default:
		s.builtinErrorf(args[0], "too many arguments")
		return StatusFailure
	}

	s.Quit = true
	arg := args[1]
	for _, ch := range arg {
		if ch < '0' || ch > '9' {
			s.builtinErrorf(args[0], "%s: numeric argument required", arg)
			return StatusMisuse
		}
	}
	if arg == "" {
		return StatusSuccess
	}

	code, err := strconv.Atoi(arg)
	if err != nil {
		// All digits but too large for an int.
		s.builtinErrorf(args[0], "%s: numeric argument required", arg)
		return StatusMisuse
	}
	return code % 256
}

// Echo writes its arguments separated by single spaces.
func Echo(s *Shell, args []string) int {
	fmt.Fprintln(s.VirtualOS.Stdout(), strings.Join(args[1:], " "))
	return StatusSuccess
}

// Type describes how each argument would be run.
func Type(s *Shell, args []string) int {
	w := s.VirtualOS.Stdout()
	for _, name := range args[1:] {
		if _, ok := s.Builtins.Lookup(name); ok {
			fmt.Fprintf(w, "%s is a shell builtin\n", name)
			continue
		}

		if path, err := s.LookPath(name); err == nil {
			fmt.Fprintf(w, "%s is %s\n", name, path)
			continue
		}

		fmt.Fprintf(w, "%s not found\n", name)
	}

	if len(args) > 1 {
		return StatusFailure
	}
	return StatusSuccess
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	fmt.Fprintln(s.VirtualOS.Stdout(), s.cwd)
	return StatusSuccess
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	home := s.VirtualOS.Getenv(EnvHome)

	var target string
	switch len(args) {
	case 1:
		if home == "" {
			s.builtinErrorf(args[0], "HOME not set")
			return StatusFailure
		}
		target = home
	case 2:
		target = args[1]
		if strings.Contains(target, "~") {
			if home == "" {
				s.builtinErrorf(args[0], "HOME not set")
				return StatusFailure
			}
			target = strings.ReplaceAll(target, "~", home)
		}
	default:
		s.builtinErrorf(args[0], "too many arguments")
		return StatusFailure
	}

	display := target
	if len(args) == 2 {
		display = args[1]
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(s.cwd, target)
	}

	canonical, err := s.VirtualOS.EvalSymlinks(target)
	if err != nil {
		s.builtinErrorf(args[0], "%s: %s", display, describePathError(err))
		return StatusFailure
	}

	// The OS directory changes first so the cached copy never points
	// somewhere the process isn't.
	if err := s.VirtualOS.Chdir(canonical); err != nil {
		s.builtinErrorf(args[0], "%s: %s", display, describePathError(err))
		return StatusFailure
	}
	s.cwd = canonical

	if err := s.VirtualOS.Setenv(EnvPWD, canonical); err != nil {
		s.log.Warn("updating PWD", "err", err)
	}
	return StatusSuccess
}

func describePathError(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return "No such file or directory"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// Help lists the builtins.
func Help(s *Shell, args []string) int {
	w := s.VirtualOS.Stdout()
	fmt.Fprintln(w, "These shell commands are defined internally.")
	fmt.Fprintln(w, "Anything else is looked up in the search path and run as a program.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)
	for _, name := range s.Builtins.Names() {
		fmt.Fprintf(w, "  %s\n", name)
	}

	return StatusSuccess
}

// historyResetter is implemented by line readers that keep their own
// history.
type historyResetter interface {
	ResetHistory()
}

// History prints or clears the lines read this session.
func History(s *Shell, args []string) int {
	opts := getopt.New()
	opts.SetProgram(args[0])
	clearOpt := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.VirtualOS.Stdout()
		status := StatusSuccess
		if err != nil {
			w = s.VirtualOS.Stderr()
			s.builtinErrorf(args[0], "%v", err)
			status = StatusMisuse
		}
		fmt.Fprintln(w, "usage: history [-c]")
		fmt.Fprintln(w, "Display or clear the history list.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return status
	}

	if *clearOpt {
		s.history = nil
		if resetter, ok := s.lines.(historyResetter); ok {
			resetter.ResetHistory()
		}
		return StatusSuccess
	}

	for i, line := range s.history {
		fmt.Fprintf(s.VirtualOS.Stdout(), "% 5d  %s\n", i+1, line)
	}
	return StatusSuccess
}

// ClearPath empties the search path, after it only builtins and commands
// given by path can run.
func ClearPath(s *Shell, args []string) int {
	s.SearchPath = nil
	return StatusSuccess
}

// LoadPath reloads the search path from PATH, or appends the given
// directories to it.
func LoadPath(s *Shell, args []string) int {
	if len(args) == 1 {
		s.SearchPath = vos.SplitPath(s.VirtualOS.Getenv(EnvPath))
		return StatusSuccess
	}

	s.SearchPath = append(s.SearchPath, args[1:]...)
	return StatusSuccess
}
