// Package value defines the data model stored in reworm stores.
//
// A Value is one of three variants, decided at the API boundary:
//
//	value.String("John")                      // Primitive
//	value.Record{"name": value.String("John")} // Record
//	value.Sequence{value.Int(1), value.Int(2)} // Sequence
//
// Plain Go data converts with Of, and JSON payloads with Parse:
//
//	v, err := value.Of(map[string]any{"list": []string{"John", "Michael"}})
//
// # Update Semantics
//
// ComputeNext decides how a write combines with the current value. Records
// are patched field by field, everything else is replaced:
//
//	current := value.Record{"name": value.String("John"), "age": value.Int(30)}
//	next, _ := value.ComputeNext(current, value.Record{"name": value.String("Michael")})
//	// next == {"name": "Michael", "age": 30}
//
// Writing a record into a scalar store, or a scalar into a record store,
// fails with ErrTypeMismatch instead of coercing.
//
// Equal is the structural comparison used to suppress broadcasts when a
// write does not change anything. Values are expected to be acyclic trees;
// Equal does not detect cycles.
package value
