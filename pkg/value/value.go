package value

import (
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	// KindNull is the kind of a nil Value and of Null().
	KindNull Kind = iota
	KindPrimitive
	KindRecord
	KindSequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the sealed variant held by a store.
// Implementations are Primitive, Record and Sequence.
type Value interface {
	Kind() Kind
	sealed()
}

// KindOf returns the kind of v, treating a nil Value as KindNull.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// IsNull reports whether v is absent: a nil Value or Null().
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

// Primitive holds a scalar: null, bool, int64, float64 or string.
type Primitive struct {
	raw any
}

// Null returns the null primitive.
func Null() Primitive { return Primitive{} }

// Bool returns a boolean primitive.
func Bool(b bool) Primitive { return Primitive{raw: b} }

// Int returns an integer primitive.
func Int(n int64) Primitive { return Primitive{raw: n} }

// Float returns a floating point primitive.
func Float(f float64) Primitive { return Primitive{raw: f} }

// String returns a string primitive.
func String(s string) Primitive { return Primitive{raw: s} }

// Kind implements Value.
func (p Primitive) Kind() Kind {
	if p.raw == nil {
		return KindNull
	}
	return KindPrimitive
}

func (Primitive) sealed() {}

// Raw returns the underlying Go scalar (nil, bool, int64, float64 or string).
func (p Primitive) Raw() any { return p.raw }

// AsString returns the string payload.
func (p Primitive) AsString() (string, bool) {
	s, ok := p.raw.(string)
	return s, ok
}

// AsBool returns the boolean payload.
func (p Primitive) AsBool() (bool, bool) {
	b, ok := p.raw.(bool)
	return b, ok
}

// AsInt returns the integer payload. Floats with no fractional part convert.
func (p Primitive) AsInt() (int64, bool) {
	switch n := p.raw.(type) {
	case int64:
		return n, true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// AsFloat returns the numeric payload as a float64.
func (p Primitive) AsFloat() (float64, bool) {
	switch n := p.raw.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// String formats the primitive for display.
func (p Primitive) String() string {
	switch v := p.raw.(type) {
	case nil:
		return "null"
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Record is a key-value mapping. Records are treated as immutable once
// stored; updates always produce a new Record.
type Record map[string]Value

// Kind implements Value.
func (Record) Kind() Kind { return KindRecord }

func (Record) sealed() {}

// Get returns the field value, or nil when absent.
func (r Record) Get(key string) Value {
	return r[key]
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of r with key set to v.
func (r Record) With(key string, v Value) Record {
	out := make(Record, len(r)+1)
	for k, fv := range r {
		out[k] = fv
	}
	out[key] = v
	return out
}

// Merge returns a new record holding every field of r, overridden by the
// fields of patch. Neither input is modified.
func (r Record) Merge(patch Record) Record {
	out := make(Record, len(r)+len(patch))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Sequence is an ordered list of values.
type Sequence []Value

// Kind implements Value.
func (Sequence) Kind() Kind { return KindSequence }

func (Sequence) sealed() {}

// Len returns the number of elements.
func (s Sequence) Len() int { return len(s) }

// At returns element i, or nil when i is out of range.
func (s Sequence) At(i int) Value {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Strings builds a sequence of string primitives.
func Strings(items ...string) Sequence {
	out := make(Sequence, len(items))
	for i, s := range items {
		out[i] = String(s)
	}
	return out
}
