package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"evalconsole/internal/eval"
	"evalconsole/internal/result"
)

func newPrintCmd(cfg *rootConfig) *cobra.Command {
	var filePath string
	var stopOnError bool

	cmd := &cobra.Command{
		Use:   "print [expression]",
		Short: "Evaluate an expression and print each element on its own line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath != "" && len(args) > 0 {
				return fmt.Errorf("print: --file and expression argument are mutually exclusive")
			}
			ev := newEvaluator(cfg)
			if filePath != "" {
				return printFile(cmd, cfg, ev, filePath, stopOnError)
			}
			expr, err := readExpr(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return printExpr(cmd, cfg, ev, expr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&filePath, "file", "F", "", "read expressions from file (use --- to separate them)")
	f.BoolVar(&stopOnError, "stop-on-error", false, "stop on first error when printing multiple expressions")
	return cmd
}

func newEvaluator(cfg *rootConfig) *eval.Evaluator {
	return eval.New(cfg.logger)
}

// readExpr returns the expression from args[0] or by reading stdin.
func readExpr(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("print: reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// printExpr evaluates expr and writes its elements, undecorated, to cmd's output.
func printExpr(cmd *cobra.Command, cfg *rootConfig, ev *eval.Evaluator, expr string) error {
	v, err := ev.Eval(cmd.Context(), expr)
	if err != nil {
		return &evalError{err: err}
	}
	if cfg.logger != nil {
		cfg.logger.Debug("printing result", zap.Stringer("shape", result.Classify(v)))
	}
	return result.Print(cmd.OutOrStdout(), v)
}

// printFile reads expressions from path, splits on "---", and prints each.
// Expressions share one evaluator, so "_" refers to the previous one.
func printFile(cmd *cobra.Command, cfg *rootConfig, ev *eval.Evaluator, path string, stopOnError bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("print: %w", err)
	}
	defer func() { _ = f.Close() }()

	exprs, err := splitExprs(f)
	if err != nil {
		return fmt.Errorf("print: reading file: %w", err)
	}

	failed, evalFailed := false, false
	for _, expr := range exprs {
		if err := printExpr(cmd, cfg, ev, expr); err != nil {
			if stopOnError {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "print error: %v\n", err)
			failed = true
			var ee *evalError
			if errors.As(err, &ee) {
				evalFailed = true
			}
		}
	}
	// individual errors already printed to stderr; the summary only sets the exit code
	summary := errors.New("print: one or more expressions failed")
	switch {
	case evalFailed:
		return &evalError{err: summary}
	case failed:
		return summary
	}
	return nil
}

// maxExprLine bounds a single line of a --file input.
const maxExprLine = 16 << 20

// splitExprs reads r and splits on lines containing only "---".
func splitExprs(r io.Reader) ([]string, error) {
	var exprs []string
	var cur strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxExprLine)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "---" {
			if e := strings.TrimSpace(cur.String()); e != "" {
				exprs = append(exprs, e)
			}
			cur.Reset()
		} else {
			cur.WriteString(line)
			cur.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if e := strings.TrimSpace(cur.String()); e != "" {
		exprs = append(exprs, e)
	}
	return exprs, nil
}
