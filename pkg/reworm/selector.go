package reworm

import (
	"strconv"
	"strings"

	rerrors "github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/value"
)

// Selector is a named, pure projection of a store value. Two selectors
// with the same key are expected to project identically, which lets
// binding layers cache by key.
type Selector struct {
	key string
	fn  func(value.Value) value.Value
}

// NewSelector creates a selector from a projection function.
func NewSelector(key string, fn func(value.Value) value.Value) Selector {
	return Selector{key: key, fn: fn}
}

// Identity returns the selector that projects a value to itself.
func Identity() Selector {
	return Selector{key: "."}
}

// Field projects a record field. Non-records and missing fields project
// to nil.
func Field(name string) Selector {
	return Selector{
		key: name,
		fn: func(v value.Value) value.Value {
			r, ok := v.(value.Record)
			if !ok {
				return nil
			}
			return r.Get(name)
		},
	}
}

// Index projects a sequence element. Non-sequences and out of range
// indexes project to nil.
func Index(i int) Selector {
	return Selector{
		key: strconv.Itoa(i),
		fn: func(v value.Value) value.Value {
			s, ok := v.(value.Sequence)
			if !ok {
				return nil
			}
			return s.At(i)
		},
	}
}

// Path builds a selector from a dotted path such as "users.0.name".
// Numeric segments index sequences and fall back to field lookup on
// records. An empty path is the identity.
func Path(path string) (Selector, error) {
	if path == "" || path == "." {
		return Identity(), nil
	}

	sel := Identity()
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return Selector{}, rerrors.New("R003").WithDetailf("empty segment in path %q", path)
		}
		sel = sel.Then(segment(seg))
	}
	sel.key = path
	return sel, nil
}

// MustPath is like Path but panics on an invalid path.
func MustPath(path string) Selector {
	sel, err := Path(path)
	if err != nil {
		panic(err)
	}
	return sel
}

func segment(seg string) Selector {
	i, err := strconv.Atoi(seg)
	if err != nil {
		return Field(seg)
	}
	field := Field(seg)
	index := Index(i)
	return Selector{
		key: seg,
		fn: func(v value.Value) value.Value {
			if _, ok := v.(value.Sequence); ok {
				return index.Apply(v)
			}
			return field.Apply(v)
		},
	}
}

// Key identifies the projection.
func (s Selector) Key() string {
	if s.key == "" {
		return "."
	}
	return s.key
}

// Apply projects v. The zero Selector is the identity.
func (s Selector) Apply(v value.Value) value.Value {
	if s.fn == nil {
		return v
	}
	return s.fn(v)
}

// Then returns a selector applying s and then next.
func (s Selector) Then(next Selector) Selector {
	switch {
	case s.fn == nil:
		return next
	case next.fn == nil:
		return s
	}
	first, second := s, next
	return Selector{
		key: first.Key() + "/" + second.Key(),
		fn: func(v value.Value) value.Value {
			return second.Apply(first.Apply(v))
		},
	}
}
