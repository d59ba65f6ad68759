package services

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/spf13/cast"
)

// MaxPathDepth bounds how many segments a placeholder path may have and how
// deep FromAny descends into untyped input.
const MaxPathDepth = 32

// objectString is what a mapping renders as when a placeholder resolves to
// a whole subtree instead of a scalar.
const objectString = "[object]"

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindMissing Kind = iota
	KindScalar
	KindMapping
)

// Value is one node of a parameter tree: a scalar, a mapping of child nodes,
// or missing. The zero Value is missing.
type Value struct {
	kind    Kind
	scalar  string
	mapping map[string]Value
}

// Missing returns the missing value. A placeholder that ends on it renders
// as the empty string.
func Missing() Value {
	return Value{}
}

// Scalar wraps an already-stringified value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Number wraps a float using its shortest canonical form (10, 2.5, -0.25).
func Number(f float64) Value {
	return Scalar(strconv.FormatFloat(f, 'f', -1, 64))
}

// Int wraps an integer.
func Int(n int) Value {
	return Scalar(strconv.Itoa(n))
}

// Bool wraps a boolean as "true" or "false".
func Bool(b bool) Value {
	return Scalar(strconv.FormatBool(b))
}

// Mapping wraps a set of named children. A nil map yields an empty mapping.
func Mapping(children map[string]Value) Value {
	if children == nil {
		children = map[string]Value{}
	}
	return Value{kind: KindMapping, mapping: children}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// Lookup returns the child stored under key. It reports false when v is not
// a mapping or has no such key.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Value{}, false
	}
	child, ok := v.mapping[key]
	return child, ok
}

// Len returns the number of children of a mapping, or zero.
func (v Value) Len() int {
	return len(v.mapping)
}

// String renders v the way a placeholder would print it.
func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindMapping:
		return objectString
	default:
		return ""
	}
}

// FromAny converts loosely typed data, typically decoded JSON, into a Value.
// nil becomes Missing, maps become mappings, slices become mappings keyed by
// index ("0", "1", ...) and everything else becomes a scalar. A map or slice
// that contains itself converts to Missing at the point where it repeats, and
// a container reachable along several paths is converted once.
func FromAny(x any) Value {
	c := &anyConverter{
		done:   make(map[containerKey]Value),
		onPath: make(map[containerKey]bool),
	}
	return c.convert(x, 0)
}

// containerKey identifies a map or slice by its backing storage.
type containerKey struct {
	ptr uintptr
	len int
}

type anyConverter struct {
	done   map[containerKey]Value
	onPath map[containerKey]bool
}

func keyOf(x any) (containerKey, bool) {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		if rv.IsNil() || rv.Len() == 0 {
			return containerKey{}, false
		}
		return containerKey{ptr: rv.Pointer(), len: rv.Len()}, true
	}
	return containerKey{}, false
}

func (c *anyConverter) convert(x any, depth int) Value {
	if depth > MaxPathDepth {
		return Missing()
	}

	switch x.(type) {
	case map[string]any, []any:
		key, ok := keyOf(x)
		if !ok {
			return Mapping(map[string]Value{})
		}
		if c.onPath[key] {
			return Missing()
		}
		if v, seen := c.done[key]; seen {
			return v
		}
		c.onPath[key] = true
		v := c.container(x, depth)
		delete(c.onPath, key)
		c.done[key] = v
		return v
	}
	return scalarFromAny(x)
}

func (c *anyConverter) container(x any, depth int) Value {
	var children map[string]Value
	switch t := x.(type) {
	case map[string]any:
		children = make(map[string]Value, len(t))
		for k, child := range t {
			children[k] = c.convert(child, depth+1)
		}
	case []any:
		children = make(map[string]Value, len(t))
		for i, child := range t {
			children[strconv.Itoa(i)] = c.convert(child, depth+1)
		}
	}
	return Mapping(children)
}

func scalarFromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Missing()
	case Value:
		return t
	case string:
		return Scalar(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case map[string]string:
		children := make(map[string]Value, len(t))
		for k, child := range t {
			children[k] = Scalar(child)
		}
		return Mapping(children)
	case map[string]Value:
		return Mapping(t)
	case []string:
		children := make(map[string]Value, len(t))
		for i, child := range t {
			children[strconv.Itoa(i)] = Scalar(child)
		}
		return Mapping(children)
	}

	s, err := cast.ToStringE(x)
	if err != nil {
		return Scalar(fmt.Sprint(x))
	}
	return Scalar(s)
}
