package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the API boundary can map it to a
// status code without string matching.
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindDuplicateKey        Kind = "DUPLICATE_KEY"
	KindDuplicateNumber     Kind = "DUPLICATE_NUMBER"
	KindMissingField        Kind = "MISSING_FIELD"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindPersistenceFailure  Kind = "PERSISTENCE_FAILURE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error, keeping it unwrappable.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or "" for non-domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
