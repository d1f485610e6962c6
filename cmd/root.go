package cmd

import (
	"fmt"
	"io"

	"github.com/abiosoft/readline"
	"github.com/charmbracelet/log"
	"github.com/josephlewis42/tinysh/core"
	"github.com/josephlewis42/tinysh/core/config"
	"github.com/josephlewis42/tinysh/core/logger"
	"github.com/josephlewis42/tinysh/core/shell"
	"github.com/josephlewis42/tinysh/core/vos"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string
	logLevel    string

	// exitStatus is the status of the last shell session.
	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	return config.LoadOrDefault(afero.NewOsFs(), cfgPath)
}

func newLogger(w io.Writer, configuration *config.Configuration) (*log.Logger, error) {
	level := configuration.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	diagnostics := log.NewWithOptions(logOutput(w), log.Options{Prefix: "tinysh"})
	diagnostics.SetLevel(parsed)
	return diagnostics, nil
}

// plainWriter hides any file descriptor behind w so the logger never
// queries the terminal for its colors at startup.
type plainWriter struct {
	io.Writer
}

func logOutput(w io.Writer) io.Writer {
	return plainWriter{w}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tinysh",
	Short: "A tiny interactive shell",
	Long: `A minimal read-eval loop shell with a handful of builtins.
Anything that isn't a builtin is found on PATH and run as a child process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		diagnostics, err := newLogger(cmd.ErrOrStderr(), configuration)
		if err != nil {
			return err
		}

		tokenizer, err := shell.ForQuoting(configuration.Quoting)
		if err != nil {
			return err
		}

		events := logger.NewNop()
		if configuration.EventLog != "" {
			fd, err := configuration.OpenEventLog()
			if err != nil {
				return fmt.Errorf("opening event log: %w", err)
			}
			defer fd.Close()

			events = logger.NewJsonLinesLogger(fd)
			defer events.Sync()
		}

		hostOS := vos.NewHostOS()
		sh, err := core.NewShell(hostOS, core.Options{
			Tokenizer: tokenizer,
			Prompt:    configuration.Prompt,
			Color:     configuration.ShouldColor(hostOS.IsTerminal()),
			Events:    events.NewSession(),
			Log:       diagnostics,
		})
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("command") {
			exitStatus = sh.RunCommand(commandLine)
			return nil
		}

		var lines core.LineReader = core.NewStreamReader(hostOS.Stdin())
		if hostOS.IsTerminal() {
			editor, err := newLineReader(hostOS, sh, configuration)
			if err != nil {
				return err
			}
			defer editor.Close()
			lines = editor
		}

		exitStatus = sh.Run(lines)
		return nil
	},
}

func newLineReader(virtualOS vos.VOS, sh *core.Shell, configuration *config.Configuration) (*readline.Instance, error) {
	var completions []readline.PrefixCompleterInterface
	for _, name := range sh.Builtins.Names() {
		completions = append(completions, readline.PcItem(name))
	}

	cfg := &readline.Config{
		Prompt:       sh.Prompt(),
		Stdin:        readline.NewCancelableStdin(virtualOS.Stdin()),
		Stdout:       virtualOS.Stdout(),
		Stderr:       virtualOS.Stderr(),
		HistoryFile:  configuration.HistoryPath(),
		HistoryLimit: configuration.HistoryLimit,
		AutoComplete: readline.NewPrefixCompleter(completions...),

		FuncIsTerminal: virtualOS.IsTerminal,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	return readline.NewEx(cfg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// The returned value is the process exit status.
func Execute() int {
	exitStatus = core.StatusSuccess
	if err := rootCmd.Execute(); err != nil {
		return core.StatusFailure
	}
	return exitStatus
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level, overrides the config (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single command line and exit")
}
