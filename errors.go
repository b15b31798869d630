package relq

import "fmt"

// UnknownTypeError indicates a Go value with no registered semantic type
// mapping was used as a literal or bound value.
type UnknownTypeError struct {
	Value any
}

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("no type mapping registered for value of type %T", e.Value)
}

// ArityError indicates a row with the wrong number of values for its
// declared column list.
type ArityError struct {
	What string
	Want int
	Got  int
}

func (e ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d values, got %d", e.What, e.Want, e.Got)
}

// ConsistencyError indicates a compiler-internal invariant violation, such as
// an expression referencing a relation that is not reachable in the final
// statement. Compilation fails fast rather than emitting malformed SQL.
type ConsistencyError struct {
	Detail string
}

func (e ConsistencyError) Error() string {
	return "query compiler consistency error: " + e.Detail
}

// UnsupportedFeatureError indicates a feature not supported by the dialect.
type UnsupportedFeatureError struct {
	Feature string
	Dialect string
	Hint    string
}

func (e UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// NewUnsupportedFeatureError creates a new unsupported feature error.
func NewUnsupportedFeatureError(dialect, feature string, hint ...string) error {
	err := UnsupportedFeatureError{Feature: feature, Dialect: dialect}
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	return err
}
