package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/dispatch"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/generator"
	"github.com/kstost/firstvibe/internal/prompt"
)

// CLIError wraps an error with a user-facing message and a hint.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with exit code 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{Message: msg, Hint: hint, Err: err, ExitCode: 1}
}

// IsQuit reports whether err means the operator chose to stop. Those runs
// end with the goodbye line and exit code 0.
func IsQuit(err error) bool {
	return errors.Is(err, dispatch.ErrAborted) ||
		errors.Is(err, prompt.ErrInterrupted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, generator.ErrSetupCancelled)
}

// MapError attaches hints to known failures. Unmapped errors are returned
// as-is.
func MapError(err error) error {
	if err == nil || IsQuit(err) {
		return err
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrNoKeysAvailable):
		return NewCLIError("No API key is configured",
			"Run `firstvibe config set <provider>.apiKey <key>` or start firstvibe in a terminal to run the setup", err)
	case config.IsValidationError(err):
		return NewCLIError("The configuration is invalid",
			"Check it with `firstvibe config list` or restore the defaults with `firstvibe config reset`", err)
	case config.IsUnknownKeyError(err):
		return NewCLIError("Unknown configuration key",
			"Run `firstvibe config list` to see every key", err)
	case errors.Is(err, generator.ErrEmptyDescription):
		return NewCLIError("A project description is required",
			"Pass it as an argument, pipe it on stdin or type it when asked", err)
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return NewCLIError("Failed to access the configuration file",
			"Check the file permissions or set FIRSTVIBE_CONFIG to another path", err)
	}
	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil || IsQuit(err) {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return 1
}
