package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed attempt for the retry engine.
type ErrorKind int

const (
	// KindOther covers auth, network, server and any unclassified failure.
	KindOther ErrorKind = iota
	// KindRateLimit means the provider throttled the request.
	KindRateLimit
	// KindMalformedOutput means the provider answered but the answer could
	// not be normalized, parsed or shape-checked.
	KindMalformedOutput
)

// String returns the class name used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "RATE_LIMIT"
	case KindMalformedOutput:
		return "MALFORMED_OUTPUT"
	default:
		return "OTHER"
	}
}

// Error is the tagged failure of a single attempt. Kind is set explicitly
// by whoever builds the error; nothing downstream parses messages.
type Error struct {
	Kind       ErrorKind
	Provider   ProviderType
	StatusCode int
	// Raw holds the provider payload that caused the failure, if any.
	Raw []byte
	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s [%s %d]: %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindOther when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}

// RawOf returns the raw provider payload attached to err, if any.
func RawOf(err error) []byte {
	var e *Error
	if errors.As(err, &e) {
		return e.Raw
	}
	return nil
}
