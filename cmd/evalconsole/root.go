package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"evalconsole/internal/config"
)

// exit codes
const (
	exitOK      = 0
	exitRuntime = 1
	exitEval    = 2
	exitINT     = 130
)

// stdinIsTTY reports whether stdin is a terminal; replaced in tests.
var stdinIsTTY = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec
}

type rootConfig struct {
	configFile  string
	prompt      string
	prefix      string
	historyFile string
	logLevel    string
	logFormat   string

	settings *config.Config
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	cfg := &rootConfig{}
	return buildRootCmd(cfg)
}

func buildRootCmd(cfg *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "evalconsole [expression]",
		Short:         "Interactive console that prints each element of a result on its own line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && stdinIsTTY() {
				return consoleStart(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			expr, err := readExpr(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return printExpr(cmd, cfg, newEvaluator(cfg), expr)
		},
	}
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.AddCommand(newConsoleCmd(cfg))
	cmd.AddCommand(newPrintCmd(cfg))

	f := cmd.PersistentFlags()
	f.StringVarP(&cfg.configFile, "config", "c", "", "config file (default: ~/.config/evalconsole/evalconsole.yaml or ./evalconsole.yaml)")
	f.StringVar(&cfg.prompt, "prompt", "", "console prompt")
	f.StringVar(&cfg.prefix, "prefix", "", "prefix written before every console result line")
	f.StringVar(&cfg.historyFile, "history-file", "", "console history file")
	f.StringVar(&cfg.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&cfg.logFormat, "log-format", "", "log format: console, structured")

	return cmd
}

// resolve loads settings, applies explicitly set flags over them and builds the logger.
func (c *rootConfig) resolve(cmd *cobra.Command) error {
	settings, err := config.Load(c.configFile)
	if err != nil {
		return err
	}
	changed := cmd.Flags().Changed
	applyFlag(&settings.Prompt, changed("prompt"), c.prompt)
	applyFlag(&settings.Prefix, changed("prefix"), c.prefix)
	applyFlag(&settings.HistoryFile, changed("history-file"), c.historyFile)
	applyFlag(&settings.LogLevel, changed("log-level"), c.logLevel)
	applyFlag(&settings.LogFormat, changed("log-format"), c.logFormat)

	logger, err := config.NewLogger(settings.LogLevel, settings.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if settings.Source != "" {
		logger.Debug("loaded config", zap.String("file", settings.Source))
	}
	c.settings = settings
	c.logger = logger
	return nil
}

// applyFlag sets *dst to the flag value when the flag was explicitly set.
func applyFlag(dst *string, flagChanged bool, val string) {
	if flagChanged {
		*dst = val
	}
}

// evalError wraps errors that should map to exitEval (2) exit code.
type evalError struct{ err error }

func (e *evalError) Error() string { return e.err.Error() }
func (e *evalError) Unwrap() error { return e.err }

// exitCode maps an error to the appropriate process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *evalError
	if errors.As(err, &ee) {
		return exitEval
	}
	return exitRuntime
}
