package result

import (
	"reflect"
)

// Shape is the runtime kind of a result value that decides how it is iterated.
// Shapes are listed in priority order: when a value fits more than one,
// the earliest wins.
type Shape int

const (
	// ShapeCursor is an already-positioned cursor or receive channel, consumed in place.
	ShapeCursor Shape = iota
	// ShapeCollection is an Iterable, a range-over-func sequence, or a slice.
	ShapeCollection
	// ShapeArray is a fixed-size Go array.
	ShapeArray
	// ShapeMapping is a Go map, a key/value sequence, or a Ranger.
	ShapeMapping
	// ShapeScalar is anything else, printed as a single element.
	ShapeScalar
)

var shapeNames = [...]string{
	ShapeCursor:     "cursor",
	ShapeCollection: "collection",
	ShapeArray:      "array",
	ShapeMapping:    "mapping",
	ShapeScalar:     "scalar",
}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// Classify returns the shape of v.
func Classify(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeScalar
	case Cursor:
		return ShapeCursor
	}

	// a receive channel is a cursor even when it also hands out cursors
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Chan && t.ChanDir()&reflect.RecvDir != 0 {
		return ShapeCursor
	}
	if _, ok := v.(Iterable); ok {
		return ShapeCollection
	}

	switch t.Kind() {
	case reflect.Slice:
		// byte slices are text, not a sequence of numbers
		if !isByteSlice(t) {
			return ShapeCollection
		}
	case reflect.Func:
		if isSeq(t, 1) {
			return ShapeCollection
		}
		if isSeq(t, 2) {
			return ShapeMapping
		}
	case reflect.Array:
		return ShapeArray
	case reflect.Map:
		return ShapeMapping
	}

	if _, ok := v.(Ranger); ok {
		return ShapeMapping
	}
	return ShapeScalar
}

var boolType = reflect.TypeFor[bool]()

// isSeq reports whether t is func(yield func(...) bool) where yield takes n arguments.
// The yield result must be bool itself; reflect cannot build a yield
// returning a named bool type.
func isSeq(t reflect.Type, n int) bool {
	if t.NumIn() != 1 || t.NumOut() != 0 || t.IsVariadic() {
		return false
	}
	yield := t.In(0)
	return yield.Kind() == reflect.Func &&
		yield.NumIn() == n &&
		!yield.IsVariadic() &&
		yield.NumOut() == 1 &&
		yield.Out(0) == boolType
}

// Open classifies v and returns a cursor over its elements.
// Cursors of ShapeCursor values are v itself; every other shape gets a
// fresh cursor positioned at the first element. Errors from an Iterable
// are returned unchanged.
func Open(v any) (Cursor, Shape, error) {
	shape := Classify(v)
	switch shape {
	case ShapeCursor:
		if c, ok := v.(Cursor); ok {
			return c, shape, nil
		}
		rv := reflect.ValueOf(v)
		if rv.IsNil() {
			return emptyCursor(), shape, nil
		}
		return &chanCursor{ch: rv}, shape, nil

	case ShapeCollection:
		if it, ok := v.(Iterable); ok {
			c, err := it.Cursor()
			if err != nil {
				return nil, shape, err
			}
			if c == nil {
				c = emptyCursor()
			}
			return c, shape, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Func {
			if rv.IsNil() {
				return emptyCursor(), shape, nil
			}
			return newPullCursor(funcSeq(rv)), shape, nil
		}
		return &indexCursor{v: rv}, shape, nil

	case ShapeArray:
		return &indexCursor{v: reflect.ValueOf(v)}, shape, nil

	case ShapeMapping:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Map:
			return &mapCursor{it: rv.MapRange()}, shape, nil
		case reflect.Func:
			if rv.IsNil() {
				return emptyCursor(), shape, nil
			}
			if isSeq(rv.Type(), 2) {
				return newPullEntryCursor(funcSeq2(rv)), shape, nil
			}
		}
		return newPullEntryCursor(rangerSeq(v.(Ranger))), shape, nil
	}

	return &singleCursor{item: v}, ShapeScalar, nil
}
