// Package eval evaluates console expressions into result values.
//
// An expression is either a YAML literal (scalar, sequence or mapping) or a
// builtin call written as "<name> <yaml-literal>". Builtins produce the
// value shapes a literal cannot: sequences, fixed-size arrays, channels
// and cursors. "_" evaluates to the previous result.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LastName is the expression that refers to the previous result.
const LastName = "_"

// ErrEmpty is returned for a blank expression.
var ErrEmpty = errors.New("eval: empty expression")

type builtinFunc func(arg string) (any, error)

// Evaluator turns expressions into values and remembers the last one.
type Evaluator struct {
	logger   *zap.Logger
	builtins map[string]builtinFunc
	last     any
}

// New creates an Evaluator. A nil logger disables logging.
func New(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		logger: logger,
		builtins: map[string]builtinFunc{
			"range":   evalRange,
			"array":   evalArray,
			"stream":  evalStream,
			"cursor":  evalCursor,
			"syncmap": evalSyncMap,
		},
	}
}

// Builtins returns the builtin names in sorted order.
func (e *Evaluator) Builtins() []string {
	names := make([]string, 0, len(e.builtins))
	for name := range e.builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Last returns the previous result, or nil.
func (e *Evaluator) Last() any { return e.last }

// Reset forgets the previous result.
func (e *Evaluator) Reset() { e.last = nil }

// Eval evaluates expr. On success the value becomes the new "_".
func (e *Evaluator) Eval(ctx context.Context, expr string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmpty
	}

	v, err := e.eval(expr)
	if err != nil {
		return nil, err
	}
	e.last = v
	return v, nil
}

func (e *Evaluator) eval(expr string) (any, error) {
	if expr == LastName {
		return e.last, nil
	}

	name, arg, _ := strings.Cut(expr, " ")
	if fn, ok := e.builtins[name]; ok {
		e.logger.Debug("builtin", zap.String("name", name))
		v, err := fn(strings.TrimSpace(arg))
		if err != nil {
			return nil, fmt.Errorf("eval: %s: %w", name, err)
		}
		return v, nil
	}

	v, err := parseLiteral(expr)
	if err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}
	return v, nil
}

func parseLiteral(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseSequence(s string) ([]any, error) {
	if s == "" {
		return nil, errors.New("missing sequence argument")
	}
	var items []any
	if err := yaml.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("expected a sequence: %w", err)
	}
	return items, nil
}

// evalRange returns a sequence of 0..n-1.
func evalRange(arg string) (any, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("expected a count: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative count %d", n)
	}
	var seq iter.Seq[int] = func(yield func(int) bool) {
		for i := range n {
			if !yield(i) {
				return
			}
		}
	}
	return seq, nil
}

var anyType = reflect.TypeFor[any]()

// evalArray returns a fixed-size array [n]any holding the sequence items.
func evalArray(arg string) (any, error) {
	items, err := parseSequence(arg)
	if err != nil {
		return nil, err
	}
	arr := reflect.New(reflect.ArrayOf(len(items), anyType)).Elem()
	for i, item := range items {
		if item != nil {
			arr.Index(i).Set(reflect.ValueOf(item))
		}
	}
	return arr.Interface(), nil
}

// evalStream returns a closed receive channel holding the sequence items.
func evalStream(arg string) (any, error) {
	items, err := parseSequence(arg)
	if err != nil {
		return nil, err
	}
	ch := make(chan any, len(items))
	for _, item := range items {
		ch <- item
	}
	close(ch)
	return (<-chan any)(ch), nil
}

// evalCursor returns a forward-only cursor over the sequence items.
func evalCursor(arg string) (any, error) {
	items, err := parseSequence(arg)
	if err != nil {
		return nil, err
	}
	return &ListCursor{items: items}, nil
}

// evalSyncMap returns a *sync.Map holding the mapping entries.
func evalSyncMap(arg string) (any, error) {
	if arg == "" {
		return nil, errors.New("missing mapping argument")
	}
	var entries map[string]any
	if err := yaml.Unmarshal([]byte(arg), &entries); err != nil {
		return nil, fmt.Errorf("expected a mapping: %w", err)
	}
	m := &sync.Map{}
	for k, v := range entries {
		m.Store(k, v)
	}
	return m, nil
}

// ListCursor is a forward-only cursor over a fixed list of items.
type ListCursor struct {
	items []any
	pos   int
}

// Next returns the next item, or io.EOF when none are left.
func (c *ListCursor) Next() (any, error) {
	if c.pos >= len(c.items) {
		return nil, io.EOF
	}
	item := c.items[c.pos]
	c.pos++
	return item, nil
}

// Remaining reports how many items have not been returned yet.
func (c *ListCursor) Remaining() int { return len(c.items) - c.pos }
