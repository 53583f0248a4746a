package form

import "errors"

var (
	// ErrNilSchema is returned when a session is created without a schema.
	ErrNilSchema = errors.New("form: schema is required")
	// ErrClosed is returned by handlers after Close.
	ErrClosed = errors.New("form: session closed")
	// ErrUnknownField is returned when an event names a field the schema
	// does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownPage is returned by ShowPage for an undeclared page id.
	ErrUnknownPage = errors.New("form: unknown page")
	// ErrUnknownButton is returned when a button reference does not resolve.
	ErrUnknownButton = errors.New("form: unknown button")
	// ErrKindMismatch is returned when a handler does not apply to the
	// control shape (for example Toggle on a text field).
	ErrKindMismatch = errors.New("form: handler does not apply to field type")
	// ErrInvalid is returned by Save when the form fails validation; no
	// request is issued.
	ErrInvalid = errors.New("form: form has invalid fields")
	// ErrNoService is returned when load or save runs without a
	// configuration service.
	ErrNoService = errors.New("form: no configuration service")
	// ErrNoActionClient is returned when a custom button runs without an
	// action client.
	ErrNoActionClient = errors.New("form: no action client")
	// ErrDeclined is returned when the user declines a confirmation prompt.
	ErrDeclined = errors.New("form: action declined")
)
