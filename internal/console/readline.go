package console

import (
	"errors"
	"io"

	"github.com/chzyer/readline"

	"evalconsole/internal/config"
)

// LineEditor configures the terminal-backed Reader.
type LineEditor struct {
	Settings  *config.Config
	Out       io.Writer
	ErrOut    io.Writer
	Completer *Completer
	// OnInterrupt runs when Ctrl+C is typed, before readline reports it.
	OnInterrupt func()
}

// Open starts a readline session. The prompt, history file, history limit
// and editing mode come from Settings; an empty history file keeps history
// in memory only.
func (le LineEditor) Open() (Reader, error) {
	s := le.Settings
	if s == nil {
		s = &config.Config{Prompt: "gremlin> "}
	}
	rc := &readline.Config{
		Prompt:                 s.Prompt,
		HistoryFile:            s.HistoryFile,
		HistoryLimit:           s.HistoryLimit,
		VimMode:                s.ViMode,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              ".exit",
		Stdout:                 le.Out,
		Stderr:                 le.ErrOut,
	}
	if le.Completer != nil {
		rc.AutoComplete = le.Completer
	}
	if hook := le.OnInterrupt; hook != nil {
		rc.FuncFilterInputRune = func(r rune) (rune, bool) {
			if r == readline.CharInterrupt {
				hook()
			}
			return r, true
		}
	}
	rl, err := readline.NewEx(rc)
	if err != nil {
		return nil, err
	}
	return &lineReader{Instance: rl}, nil
}

// lineReader adapts *readline.Instance to Reader.
type lineReader struct {
	*readline.Instance
}

func (r *lineReader) Readline() (string, error) {
	line, err := r.Instance.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

func (r *lineReader) AddHistory(line string) error {
	return r.SaveHistory(line)
}
