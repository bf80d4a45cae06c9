package value

import (
	rerrors "github.com/pedronauck/reworm/internal/errors"
)

// ErrTypeMismatch matches errors returned by ComputeNext when a record and
// a non-record value meet.
var ErrTypeMismatch = rerrors.New("R001")

// ComputeNext returns the value a store holds after writing candidate over
// current.
//
//   - An absent current value (nil or Null) is replaced by candidate.
//   - Two records merge shallowly; candidate fields win.
//   - Two non-records: candidate replaces current.
//   - A record on one side only is a type mismatch.
func ComputeNext(current, candidate Value) (Value, error) {
	if IsNull(current) {
		return candidate, nil
	}

	cur, curRecord := current.(Record)
	patch, candRecord := candidate.(Record)

	switch {
	case curRecord && candRecord:
		return cur.Merge(patch), nil
	case curRecord != candRecord:
		return nil, rerrors.New("R001").
			WithDetailf("current value is a %s, candidate is a %s", KindOf(current), KindOf(candidate)).
			WithSuggestion("Patch record stores with a record; use a separate store for scalar state")
	}

	return candidate, nil
}
