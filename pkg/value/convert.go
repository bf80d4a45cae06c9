package value

import (
	"encoding/json"
	"math"
	"reflect"

	rerrors "github.com/pedronauck/reworm/internal/errors"
)

// ErrUnsupported matches errors returned by Of for data that cannot be
// stored (channels, functions, complex numbers, maps with non-string keys).
var ErrUnsupported = rerrors.New("R040")

// Of converts plain Go data into a Value.
//
// Scalars become primitives, maps with string keys become records, slices
// and arrays become sequences. Structs are converted through their JSON
// encoding so json tags apply. Values pass through unchanged.
func Of(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case json.Number:
		return fromNumber(v)
	case map[string]any:
		out := make(Record, len(v))
		for k, fv := range v {
			conv, err := Of(fv)
			if err != nil {
				return nil, err
			}
			out[k] = conv
		}
		return out, nil
	case []any:
		out := make(Sequence, len(v))
		for i, ev := range v {
			conv, err := Of(ev)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}
	return ofReflect(reflect.ValueOf(x))
}

// MustOf is like Of but panics on unsupported input.
// Intended for literals in tests and package-level definitions.
func MustOf(x any) Value {
	v, err := Of(x)
	if err != nil {
		panic(err)
	}
	return v
}

func ofReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Invalid:
		return Null(), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return Of(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, rerrors.New("R040").WithDetailf("map key type %s is not a string", rv.Type().Key())
		}
		if rv.IsNil() {
			return Null(), nil
		}
		out := make(Record, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			conv, err := Of(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = conv
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null(), nil
		}
		out := make(Sequence, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			conv, err := Of(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case reflect.Struct:
		data, err := json.Marshal(rv.Interface())
		if err != nil {
			return nil, rerrors.New("R040").WithDetailf("struct %s", rv.Type()).Wrap(err)
		}
		return Parse(data)
	}
	return nil, rerrors.New("R040").WithDetailf("cannot store a %s", rv.Kind())
}

func fromNumber(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, rerrors.New("R041").WithDetailf("number %q", n.String()).Wrap(err)
	}
	return Float(f), nil
}

// Interface converts v back into plain Go data: nil, bool, int64, float64,
// string, map[string]any or []any.
func Interface(v Value) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case Primitive:
		return tv.raw
	case Record:
		out := make(map[string]any, len(tv))
		for k, fv := range tv {
			out[k] = Interface(fv)
		}
		return out
	case Sequence:
		out := make([]any, len(tv))
		for i, ev := range tv {
			out[i] = Interface(ev)
		}
		return out
	}
	return nil
}
