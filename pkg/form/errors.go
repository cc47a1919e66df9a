package form

import "errors"

var (
	// ErrReadOnly is returned when a locked field is edited.
	ErrReadOnly = errors.New("form: field is read-only")
	// ErrUnknownField is returned for paths the schema does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrHidden is returned when editing a field whose visibility rule is
	// currently false.
	ErrHidden = errors.New("form: field is hidden")
)
