// Package extract locates prop lines inside schema-less sportsbook JSON.
//
// Scraped payloads are decoded into a small tagged union (Mapping, Sequence and
// scalar types) that keeps object keys in document order, because key order is
// the tie-break when several keys of one candidate match.
package extract

import (
	"sort"
	"strconv"
)

// Value is one node of a decoded document.
type Value interface {
	value()
}

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Value
}

// Mapping is a JSON object with keys in source order.
type Mapping []Field

// Sequence is a JSON array.
type Sequence []Value

// Number is a JSON number.
type Number float64

// String is a JSON string.
type String string

// Bool is a JSON boolean.
type Bool bool

// Null is JSON null.
type Null struct{}

func (Mapping) value()  {}
func (Sequence) value() {}
func (Number) value()   {}
func (String) value()   {}
func (Bool) value()     {}
func (Null) value()     {}

// Get returns the value stored under key (exact match).
func (m Mapping) Get(key string) (Value, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// GetString returns the string stored under key, or "" when the key is
// missing or holds something else.
func (m Mapping) GetString(key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	if s, ok := v.(String); ok {
		return string(s)
	}
	return ""
}

// FromAny converts values produced by encoding/json (or any decoder that
// yields map[string]any / []any) into a Value. Map keys are sorted since Go
// maps carry no order.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(Mapping, 0, len(keys))
		for _, k := range keys {
			m = append(m, Field{Key: k, Value: FromAny(t[k])})
		}
		return m
	case []any:
		s := make(Sequence, 0, len(t))
		for _, it := range t {
			s = append(s, FromAny(it))
		}
		return s
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(t)
	case int:
		return Number(t)
	case int64:
		return Number(t)
	case int32:
		return Number(t)
	case interface{ String() string }:
		// json.Number and friends
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return Number(f)
		}
		return String(t.String())
	default:
		return Null{}
	}
}
