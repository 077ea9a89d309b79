package docstream

import (
	"errors"
	"fmt"

	"github.com/docstream-io/docstream/document"
)

// Error kinds.  Every decode failure wraps exactly one of these, so callers
// can classify errors with errors.Is while the message itself carries the
// full context (document id, field, declared type, cause).
var (
	// ErrStructure reports a malformed operation object: an unrecognized
	// key, a missing operation key, a missing 'fields' map, or a value of
	// the wrong JSON shape.
	ErrStructure = errors.New("malformed document operation")

	// ErrUnknownDocumentType reports a document id whose embedded type name
	// is not in the type registry.
	ErrUnknownDocumentType = errors.New("unknown document type")

	// ErrUnknownField reports a field name (document field or struct
	// member) that is not part of the schema.
	ErrUnknownField = errors.New("unknown field")

	// ErrTypeMismatch reports a value whose JSON shape or numeric range is
	// incompatible with the field's declared type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedOperator reports an update operator that is invalid for
	// the target field's type, or unknown altogether.
	ErrUnsupportedOperator = errors.New("unsupported update operator")
)

// fieldError wraps a decode failure with the uniform document/field/type
// context required of every field-level error.
func fieldError(id document.DocumentId, field string, typ document.DataType, cause error) error {
	return fmt.Errorf("Error in document '%s' - could not parse field '%s' of type '%s': %w",
		id, field, typ.Name(), cause)
}
