// Package result prints the value of an evaluated console expression as
// lines of text, one line per logical element.
//
// A value is classified into a Shape (cursor, collection, array, mapping
// or scalar), turned into a Cursor, and drained into the sink. Line
// decoration such as a "==> " prompt is left to the sink.
package result

import (
	"errors"
	"fmt"
	"io"
)

// Print writes every element of v to w, one per line, in iteration order.
//
// A Cursor or channel passed as v is drained in place and left exhausted;
// it is never closed. Cursors opened by Print are closed when it returns.
// The first error from opening v, from the cursor, or from w is returned
// as-is; lines written before it stay written.
func Print(w io.Writer, v any) (err error) {
	c, shape, err := Open(v)
	if err != nil {
		return err
	}
	if closer, ok := c.(io.Closer); ok && shape != ShapeCursor {
		defer func() {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}()
	}
	return Drain(w, c)
}

// Drain writes the remaining elements of c to w, one per line.
func Drain(w io.Writer, c Cursor) error {
	for {
		item, err := c.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, Text(item)); err != nil {
			return err
		}
	}
}
