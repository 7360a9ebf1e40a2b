package console

import (
	"bytes"
	"io"
)

// PrefixWriter writes prefix at the start of every line passed through it.
// It counts complete lines; partial writes are continued on the same line.
type PrefixWriter struct {
	w         io.Writer
	prefix    []byte
	midLine   bool
	lineCount int
}

// NewPrefixWriter wraps w so every line begins with prefix.
func NewPrefixWriter(w io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{w: w, prefix: []byte(prefix)}
}

// Write implements io.Writer. The returned count refers to p, not to the
// bytes written to the underlying writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer
	for rest := p; len(rest) > 0; {
		if !pw.midLine {
			buf.Write(pw.prefix)
			pw.midLine = true
		}
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			buf.Write(rest)
			break
		}
		buf.Write(rest[:i+1])
		rest = rest[i+1:]
		pw.midLine = false
		pw.lineCount++
	}
	if _, err := pw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Lines reports how many newline-terminated lines have been written.
func (pw *PrefixWriter) Lines() int { return pw.lineCount }
