package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"evalconsole/internal/console"
)

// consoleStart is the function used to launch the console; replaced in tests.
var consoleStart = runConsole

func newConsoleCmd(cfg *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Start an interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return consoleStart(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// runConsole creates a readline reader and runs the console loop.
func runConsole(_ context.Context, cfg *rootConfig, out, errOut io.Writer) error {
	ev := newEvaluator(cfg)
	settings := cfg.settings

	interruptCh := make(chan struct{}, 1)
	notifyInterrupt := func() {
		select {
		case interruptCh <- struct{}{}:
		default:
		}
	}
	reader, err := console.LineEditor{
		Settings:    settings,
		Out:         out,
		ErrOut:      errOut,
		Completer:   &console.Completer{Builtins: ev.Builtins()},
		OnInterrupt: notifyInterrupt,
	}.Open()
	if err != nil {
		return err
	}

	var once sync.Once
	closeReader := func() { once.Do(func() { _ = reader.Close() }) }
	defer closeReader()

	// consoleCtx is independent of the command context so that OS SIGINT during
	// evaluation cancels only the current expression (via interruptCh).
	consoleCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// route OS SIGINT to interruptCh; readline handles Ctrl+C in raw mode itself.
	sigIntCh := make(chan os.Signal, 1)
	signal.Notify(sigIntCh, os.Interrupt)
	defer signal.Stop(sigIntCh)

	// close readline on SIGTERM for graceful exit.
	sigTermCh := make(chan os.Signal, 1)
	signal.Notify(sigTermCh, syscall.SIGTERM)
	defer signal.Stop(sigTermCh)

	go func() {
		for {
			select {
			case <-sigIntCh:
				notifyInterrupt()
			case <-sigTermCh:
				closeReader()
				return
			case <-consoleCtx.Done():
				return
			}
		}
	}()

	c := console.New(&console.Config{
		Reader:      reader,
		Eval:        ev.Eval,
		Out:         out,
		ErrOut:      errOut,
		InterruptCh: interruptCh,
		Prompt:      settings.Prompt,
		Prefix:      &settings.Prefix,
		OnReset:     ev.Reset,
		Logger:      cfg.logger,
	})
	return c.Run(consoleCtx)
}
