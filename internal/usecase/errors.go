package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a preview could not be resolved.
type ErrorKind int

const (
	NoError ErrorKind = iota
	MissingParameter
	InvalidPayload
)

func (k ErrorKind) String() string {
	switch k {
	case MissingParameter:
		return "missing_parameter"
	case InvalidPayload:
		return "invalid_payload"
	default:
		return "none"
	}
}

// Message is the text shown to the user for k.
func (k ErrorKind) Message() string {
	switch k {
	case MissingParameter:
		return "Missing parameters: both template and data are required."
	case InvalidPayload:
		return "Invalid data format: the resume data could not be decoded."
	default:
		return ""
	}
}

// ResolveError is returned by Resolver.Resolve.
type ResolveError struct {
	Kind ErrorKind
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Is matches any ResolveError of the same kind, so errors.Is works against
// ErrMissingParameter and ErrInvalidPayload.
func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingParameter = &ResolveError{Kind: MissingParameter}
	ErrInvalidPayload   = &ResolveError{Kind: InvalidPayload}
)

// KindOf extracts the ErrorKind carried by err, or NoError.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return NoError
}
