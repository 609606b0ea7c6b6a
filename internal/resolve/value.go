package resolve

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value errors.
var (
	// ErrNotScalar is returned when a mapping or sequence value is used where
	// text is required.
	ErrNotScalar = errors.New("value cannot be rendered as text")
	// ErrUnsupportedType is returned when FromAny receives a Go value outside
	// the JSON-like shape set.
	ErrUnsupportedType = errors.New("unsupported context value type")
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindNull is the explicit absence marker.
	KindNull Kind = iota
	// KindString holds text.
	KindString
	// KindNumber holds a numeric value.
	KindNumber
	// KindBool holds a boolean.
	KindBool
	// KindMap holds a nested mapping with unique string keys.
	KindMap
	// KindSeq holds an ordered sequence of values.
	KindSeq
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindSeq:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is a tagged variant over the JSON-like shapes a data context may hold:
// null, string, number, boolean, mapping, or sequence. The zero Value is null.
type Value struct {
	kind    Kind
	str     string
	num     float64
	boolean bool
	mapping map[string]Value
	seq     []Value
}

// Null returns the explicit absence value.
func Null() Value { return Value{kind: KindNull} }

// String wraps a text value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Map wraps a mapping value. The mapping is not copied.
func Map(m map[string]Value) Value { return Value{kind: KindMap, mapping: m} }

// Seq wraps a sequence value. The slice is not copied.
func Seq(items []Value) Value { return Value{kind: KindSeq, seq: items} }

// FromAny converts a JSON-like Go value (as produced by encoding/json or
// yaml.v3 unmarshalling into any) into a Value tree.
func FromAny(v any) (Value, error) {
	switch value := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return value, nil
	case string:
		return String(value), nil
	case bool:
		return Bool(value), nil
	case float64:
		return Number(value), nil
	case float32:
		return Number(float64(value)), nil
	case int:
		return Number(float64(value)), nil
	case int32:
		return Number(float64(value)), nil
	case int64:
		return Number(float64(value)), nil
	case uint64:
		return Number(float64(value)), nil
	case map[string]any:
		mapping := make(map[string]Value, len(value))
		for key, entry := range value {
			converted, err := FromAny(entry)
			if err != nil {
				return Null(), fmt.Errorf("key %q: %w", key, err)
			}
			mapping[key] = converted
		}
		return Map(mapping), nil
	case []any:
		seq := make([]Value, 0, len(value))
		for i, entry := range value {
			converted, err := FromAny(entry)
			if err != nil {
				return Null(), fmt.Errorf("index %d: %w", i, err)
			}
			seq = append(seq, converted)
		}
		return Seq(seq), nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// Lookup resolves a dotted path against the value tree. The second return is
// false when any path segment is missing or traverses a non-mapping value.
func (v Value) Lookup(path string) (Value, bool) {
	current := v
	for _, segment := range strings.Split(path, ".") {
		if segment == "" {
			return Null(), false
		}
		if current.kind != KindMap {
			return Null(), false
		}
		next, ok := current.mapping[segment]
		if !ok {
			return Null(), false
		}
		current = next
	}
	return current, true
}

// Truthy reports whether the value satisfies the enumerated inclusion rule:
// falsy values are null, the empty string, the empty sequence, and boolean
// false. Everything else, numeric zero included, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.str != ""
	case KindNumber:
		return true
	case KindBool:
		return v.boolean
	case KindMap:
		return true
	case KindSeq:
		return len(v.seq) > 0
	default:
		return false
	}
}

// Text returns the canonical textual form of a scalar value. Null, mapping,
// and sequence values have no textual form and return ErrNotScalar.
func (v Value) Text() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindNumber:
		return formatNumber(v.num), nil
	case KindBool:
		return strconv.FormatBool(v.boolean), nil
	default:
		return "", fmt.Errorf("%s %w", v.kind, ErrNotScalar)
	}
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
