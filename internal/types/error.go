package types

import "fmt"

// UnsupportedKindError reports a type-model node the caller does not know
// how to process. It signals incomplete kind coverage in the consumer, not
// bad input data, and is always fatal for the export.
type UnsupportedKindError struct {
	TypeName string
	Kind     Kind
}

func (e *UnsupportedKindError) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("unsupported type kind %s", e.Kind)
	}
	return fmt.Sprintf("type %q: unsupported type kind %s", e.TypeName, e.Kind)
}
