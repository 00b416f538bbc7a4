package spec

import "fmt"

// ParseError reports malformed configuration input: structural problems
// such as unbalanced braces, or a type mismatch between a declared field
// and its value. Unknown keys never produce a ParseError; they surface as
// warnings instead.
type ParseError struct {
	// Field is the offending configuration key, empty for structural errors.
	Field string
	// Value is the offending raw value, when one exists.
	Value string
	// Reason describes what was wrong.
	Reason string
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Value != "":
		return fmt.Sprintf("invalid configuration: field %q with value %q: %s", e.Field, e.Value, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("invalid configuration: field %q: %s", e.Field, e.Reason)
	default:
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
}
