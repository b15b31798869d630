package relq

import (
	"fmt"
	"time"
)

// Type is the semantic type of a column or scalar expression.
type Type int

const (
	TBool Type = iota
	TInt
	TFloat
	TString
	TTime
	TBytes
)

// String returns the type name for error messages.
func (t Type) String() string {
	switch t {
	case TBool:
		return "bool"
	case TInt:
		return "int"
	case TFloat:
		return "float"
	case TString:
		return "string"
	case TTime:
		return "time"
	case TBytes:
		return "bytes"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// litType maps a Go value to its semantic type. Values with no registered
// mapping are rejected at construction time, never at execution time.
func litType(v any) (Type, error) {
	switch v.(type) {
	case bool:
		return TBool, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TInt, nil
	case float32, float64:
		return TFloat, nil
	case string:
		return TString, nil
	case time.Time:
		return TTime, nil
	case []byte:
		return TBytes, nil
	default:
		return 0, UnknownTypeError{Value: v}
	}
}
