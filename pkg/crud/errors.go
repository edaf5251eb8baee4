package crud

import (
	"fmt"

	"github.com/pkg/errors"
)

// GeneralErrorKey is the ValidationErrors key for failures that cannot be
// attributed to a single field.
const GeneralErrorKey = "general"

var (
	// ErrSchemaNotFound is returned for lookups of unknown entity types.
	// Callers render nothing and log; they never crash on it.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrNoDraft is returned for draft operations outside the Editing state.
	ErrNoDraft = errors.New("no draft in progress")

	// ErrSubmitInFlight is returned when a submit or cancel races an
	// unresolved submit on the same form instance.
	ErrSubmitInFlight = errors.New("submit already in flight")

	// ErrFormClosed marks a submit whose response arrived after the form
	// was closed; its result has been discarded.
	ErrFormClosed = errors.New("form closed")

	// ErrValidation signals that Submit stopped on a populated
	// ValidationErrors set rather than a transport failure.
	ErrValidation = errors.New("validation failed")
)

// ValidationErrors maps field names (or GeneralErrorKey) to human-readable
// messages.
type ValidationErrors map[string]string

func (e ValidationErrors) Set(field, message string) {
	e[field] = message
}

func (e ValidationErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// General returns the message not attributable to any field, if any.
func (e ValidationErrors) General() string {
	return e[GeneralErrorKey]
}

// FieldErrorer is implemented by errors that carry per-field messages, such
// as the IPAM API's unprocessable-entity responses. The form controller
// merges them into its ValidationErrors.
type FieldErrorer interface {
	FieldErrors() map[string]string
}

// ReferenceLoadError records the failure to load one entity type's reference
// rows. It degrades that type's pickers to empty; it is never fatal.
type ReferenceLoadError struct {
	Type EntityType
	Err  error
}

func (e *ReferenceLoadError) Error() string {
	return fmt.Sprintf("loading %s references: %v", e.Type, e.Err)
}

func (e *ReferenceLoadError) Unwrap() error {
	return e.Err
}

// DeleteError is surfaced as a blocking alert; the listing is not mutated
// until the API confirms the delete.
type DeleteError struct {
	Type EntityType
	ID   int64
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting %s/%d: %v", e.Type, e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
