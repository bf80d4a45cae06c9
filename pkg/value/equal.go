package value

import "math"

// Equal reports whether a and b are structurally equal.
//
// Primitives compare by value, with integers and floats compared
// numerically and exactly. NaN equals NaN. Records compare field by field regardless of order;
// sequences compare element by element in order. A nil Value equals only
// nil or Null(). Equal never panics; it does not detect cyclic values.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}

	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		return ok && primitiveEqual(av, bv)

	case Record:
		bv, ok := b.(Record)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, present := bv[k]
			if !present || !Equal(v, w) {
				return false
			}
		}
		return true

	case Sequence:
		bv, ok := b.(Sequence)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	return false
}

func primitiveEqual(a, b Primitive) bool {
	switch av := a.raw.(type) {
	case int64:
		switch bv := b.raw.(type) {
		case int64:
			return av == bv
		case float64:
			return intFloatEqual(av, bv)
		}
		return false
	case float64:
		switch bv := b.raw.(type) {
		case float64:
			// NaN equals NaN so repeating a NaN write is not a change.
			return av == bv || (math.IsNaN(av) && math.IsNaN(bv))
		case int64:
			return intFloatEqual(bv, av)
		}
		return false
	case string:
		bv, ok := b.raw.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.raw.(bool)
		return ok && av == bv
	}
	return false
}

// intFloatEqual compares exactly, without rounding i to a float64.
func intFloatEqual(i int64, f float64) bool {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return false
	}
	return int64(f) == i
}
