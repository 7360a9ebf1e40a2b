package result

import (
	"fmt"
	"io"
	"iter"
	"reflect"
)

// Cursor iterates over the elements of a result value.
// Next returns io.EOF once the cursor is exhausted.
type Cursor interface {
	Next() (any, error)
}

// Iterable is a collection that hands out a fresh Cursor positioned at its first element.
type Iterable interface {
	Cursor() (Cursor, error)
}

// Ranger is a mapping that visits its entries in its own order, like *sync.Map.
type Ranger interface {
	Range(f func(key, value any) bool)
}

// Entry is one key/value pair of a mapping. It prints as a single element.
type Entry struct {
	Key   any
	Value any
}

func (e Entry) String() string {
	return Text(e.Key) + "=" + Text(e.Value)
}

// singleCursor yields one value, then io.EOF.
type singleCursor struct {
	item any
	done bool
}

func (c *singleCursor) Next() (any, error) {
	if c.done {
		return nil, io.EOF
	}
	c.done = true
	return c.item, nil
}

// indexCursor walks a slice or array from index 0 to Len()-1.
type indexCursor struct {
	v   reflect.Value
	pos int
}

func (c *indexCursor) Next() (any, error) {
	if c.pos >= c.v.Len() {
		return nil, io.EOF
	}
	item := c.v.Index(c.pos).Interface()
	c.pos++
	return item, nil
}

// mapCursor yields an Entry per map key in Go's map iteration order.
type mapCursor struct {
	it *reflect.MapIter
}

func (c *mapCursor) Next() (any, error) {
	if !c.it.Next() {
		return nil, io.EOF
	}
	return Entry{Key: c.it.Key().Interface(), Value: c.it.Value().Interface()}, nil
}

// chanCursor receives from a channel until it is closed.
type chanCursor struct {
	ch reflect.Value
}

func (c *chanCursor) Next() (any, error) {
	item, ok := c.ch.Recv()
	if !ok {
		return nil, io.EOF
	}
	return item.Interface(), nil
}

// pullCursor adapts a push-style sequence to Cursor. Close must be called
// to release the sequence if it is not drained.
type pullCursor struct {
	next func() (any, bool)
	stop func()
}

func newPullCursor(seq iter.Seq[any]) *pullCursor {
	next, stop := iter.Pull(seq)
	return &pullCursor{next: next, stop: stop}
}

func newPullEntryCursor(seq iter.Seq2[any, any]) *pullCursor {
	next, stop := iter.Pull2(seq)
	return &pullCursor{
		next: func() (any, bool) {
			k, v, ok := next()
			if !ok {
				return nil, false
			}
			return Entry{Key: k, Value: v}, true
		},
		stop: stop,
	}
}

func (c *pullCursor) Next() (any, error) {
	item, ok := c.next()
	if !ok {
		return nil, io.EOF
	}
	return item, nil
}

func (c *pullCursor) Close() error {
	c.stop()
	return nil
}

// funcSeq exposes a func(yield func(T) bool) of any T as a sequence of any.
func funcSeq(fn reflect.Value) iter.Seq[any] {
	return func(yield func(any) bool) {
		for v := range fn.Seq() {
			if !yield(v.Interface()) {
				return
			}
		}
	}
}

// funcSeq2 exposes a func(yield func(K, V) bool) as a sequence of key/value pairs.
func funcSeq2(fn reflect.Value) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for k, v := range fn.Seq2() {
			if !yield(k.Interface(), v.Interface()) {
				return
			}
		}
	}
}

// rangerSeq exposes a Ranger as a sequence of key/value pairs.
func rangerSeq(r Ranger) iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		r.Range(yield)
	}
}

// Text returns the default textual form of v. Byte slices print as their
// contents; everything else prints as fmt's %v.
func Text(v any) string {
	switch t := v.(type) {
	case fmt.Stringer, error:
		return fmt.Sprint(v)
	case []byte:
		return string(t)
	}
	if isByteSlice(reflect.TypeOf(v)) {
		return string(reflect.ValueOf(v).Bytes())
	}
	return fmt.Sprint(v)
}

func isByteSlice(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func emptyCursor() Cursor {
	return &indexCursor{v: reflect.ValueOf([]any(nil))}
}
