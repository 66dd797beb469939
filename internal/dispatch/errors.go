package dispatch

import (
	"errors"
	"fmt"

	"github.com/kstost/firstvibe/internal/domain"
)

// ErrAborted is matched by every AbortError. Callers stop the whole
// session when errors.Is(err, ErrAborted).
var ErrAborted = errors.New("aborted by operator")

// AbortError is returned when the operator declines to keep retrying.
type AbortError struct {
	Purpose domain.Purpose
	// Cause is the failure that led to the escalation.
	Cause error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s call aborted by operator: %v", e.Purpose, e.Cause)
}

func (e *AbortError) Unwrap() error {
	return e.Cause
}

func (e *AbortError) Is(target error) bool {
	return target == ErrAborted
}
