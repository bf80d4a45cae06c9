// Package errors provides structured, coded errors for reworm.
//
// Every error carries a stable code (for example "R001"), a category, a
// short message and optionally a longer detail and a fix suggestion.
//
// Usage:
//
//	err := errors.New("R001").
//	    WithStore("user").
//	    WithDetail("current value is a record, candidate is a string")
//
//	fmt.Println(err.Format())        // colored terminal output
//	fmt.Println(err.FormatCompact()) // single line
//
// Errors created from the same code match each other with errors.Is, so
// callers can test against the exported sentinels of pkg/reworm and
// pkg/value without caring about the detail text.
package errors
