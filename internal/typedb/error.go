package typedb

import "fmt"

// NotFoundError reports a requested or dependency type name absent from the
// source. It is fatal for the whole export: a silently widened search scope
// would produce a layout the caller never asked for.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("type %q not found in type database", e.Name)
}

// SchemaError reports a snapshot written with an unknown schema version.
type SchemaError struct {
	Path   string
	Schema uint16
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: unsupported snapshot schema %d (expected %d)",
		e.Path, e.Schema, snapshotSchemaVersion)
}
