// Package console provides the interactive shell that evaluates expressions
// and prints their results with a per-line prefix.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"evalconsole/internal/result"
)

// ErrInterrupt is returned by Reader.Readline when the user presses Ctrl+C.
var ErrInterrupt = errors.New("interrupt")

// DefaultPrefix decorates every line of printed results.
const DefaultPrefix = "==> "

// Reader abstracts line input for testability.
type Reader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	AddHistory(line string) error
	Close() error
}

// EvalFunc evaluates an expression into a result value.
type EvalFunc func(ctx context.Context, expr string) (any, error)

// Config holds Console construction options.
type Config struct {
	Reader      Reader
	Eval        EvalFunc
	Out         io.Writer
	ErrOut      io.Writer
	InterruptCh <-chan struct{} // receives when user interrupts during evaluation
	Prompt      string
	Prefix      *string // nil means DefaultPrefix; empty disables decoration
	OnReset     func()  // called when .reset is executed
	Logger      *zap.Logger
}

// Console is the interactive shell.
type Console struct {
	reader      Reader
	eval        EvalFunc
	out         io.Writer
	errOut      io.Writer
	interruptCh <-chan struct{}
	prompt      string
	prefix      string
	onReset     func()
	logger      *zap.Logger
}

// New creates a Console from Config.
func New(cfg *Config) *Console {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = "gremlin> "
	}
	prefix := DefaultPrefix
	if cfg.Prefix != nil {
		prefix = *cfg.Prefix
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	errOut := cfg.ErrOut
	if errOut == nil {
		errOut = io.Discard
	}
	onReset := cfg.OnReset
	if onReset == nil {
		onReset = func() {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		reader:      cfg.Reader,
		eval:        cfg.Eval,
		out:         out,
		errOut:      errOut,
		interruptCh: cfg.InterruptCh,
		prompt:      prompt,
		prefix:      prefix,
		onReset:     onReset,
		logger:      logger,
	}
}

const contPrompt = "... "

// Run starts the read-eval-print loop. Returns nil on clean exit (EOF).
func (c *Console) Run(ctx context.Context) error {
	c.reader.SetPrompt(c.prompt)
	var lines []string
	for {
		line, err := c.reader.Readline()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrInterrupt) {
				lines = lines[:0]
				c.reader.SetPrompt(c.prompt)
				continue
			}
			return err
		}

		if len(lines) == 0 {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, ".") {
				if c.dotCommand(line) {
					return nil
				}
				continue
			}
		}

		lines = append(lines, line)
		input := strings.Join(lines, "\n")

		if !isComplete(input) {
			c.reader.SetPrompt(contPrompt)
			continue
		}

		c.reader.SetPrompt(c.prompt)
		lines = lines[:0]

		expr := strings.TrimSpace(input)
		_ = c.reader.AddHistory(expr)
		c.evalAndPrint(ctx, expr)
	}
}

// isComplete returns true when all parentheses, braces, and brackets are balanced.
// Bracket characters inside string literals are ignored. A quote only opens a
// string at the start of a token, so apostrophes in plain words like it's do not.
func isComplete(s string) bool {
	depth := 0
	inStr := false
	strChar := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inStr {
			if ch == '\\' {
				i++
				continue
			}
			if ch == strChar {
				inStr = false
			}
			continue
		}
		switch ch {
		case '"', '\'':
			if startsToken(s, i) {
				inStr = true
				strChar = ch
			}
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		}
	}
	return depth <= 0 && !inStr
}

// startsToken reports whether position i begins a new token.
func startsToken(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case ' ', '\t', '\n', '\r', '[', '{', '(', ',', ':':
		return true
	}
	return false
}

// dotCommand dispatches a console dot-command. Returns true if the console should exit.
func (c *Console) dotCommand(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ".exit", ".quit":
		return true
	case ".prefix":
		c.prefix = ""
		if arg = strings.TrimSpace(arg); arg != "" {
			c.prefix = arg + " "
		}
	case ".reset":
		c.onReset()
	case ".help":
		_, _ = fmt.Fprintln(c.out, "Available commands:")
		_, _ = fmt.Fprintln(c.out, "  .exit, .quit          exit the console")
		_, _ = fmt.Fprintln(c.out, "  .prefix [text]        set the result line prefix (none when omitted)")
		_, _ = fmt.Fprintln(c.out, "  .reset                forget the last result (_)")
		_, _ = fmt.Fprintln(c.out, "  .help                 show this help")
	default:
		_, _ = fmt.Fprintf(c.errOut, "unknown command: %s\n", name)
	}
	return false
}

func (c *Console) evalAndPrint(ctx context.Context, expr string) {
	// drain any stale interrupt signal queued while readline was waiting for input
	for len(c.interruptCh) > 0 {
		<-c.interruptCh
	}
	evalCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := c.watchInterrupt(evalCtx, cancel)
	defer func() {
		cancel() // unblock watchInterrupt goroutine via evalCtx.Done()
		<-done
	}()

	start := time.Now()
	v, err := c.eval(evalCtx, expr)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(c.errOut, err)
		}
		return
	}

	pw := NewPrefixWriter(c.out, c.prefix)
	err = result.Print(&interruptibleWriter{ctx: evalCtx, w: pw}, v)
	c.logger.Debug("printed result",
		zap.String("expr", expr),
		zap.Stringer("shape", result.Classify(v)),
		zap.Int("lines", pw.Lines()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(c.errOut, err)
	}
}

// interruptibleWriter fails every write once ctx is done, which stops a
// drain in progress at the next element.
type interruptibleWriter struct {
	ctx context.Context
	w   io.Writer
}

func (iw *interruptibleWriter) Write(p []byte) (int, error) {
	if err := iw.ctx.Err(); err != nil {
		return 0, err
	}
	return iw.w.Write(p)
}

// watchInterrupt starts a goroutine that cancels evalCtx on interrupt.
// Returns a channel closed when the goroutine exits.
// If interruptCh is nil, returns an already-closed channel.
func (c *Console) watchInterrupt(evalCtx context.Context, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	if c.interruptCh == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		select {
		case <-c.interruptCh:
			cancel()
		case <-evalCtx.Done():
		}
	}()
	return done
}
