package cli

import (
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/versionlog/internal/errors"
)

// Exit codes for the versionlog CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates an unexpected runtime failure
	ExitFailure = 1

	// ExitConfigError indicates invalid or unreadable configuration
	ExitConfigError = 2

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitPolicyViolation indicates the branch guard refused the operation
	ExitPolicyViolation = 4

	// ExitNotFound indicates no record matched the lookup
	ExitNotFound = 5

	// ExitCorruptData indicates a stored record could not be decoded
	ExitCorruptData = 6
)

// ExitError carries an exit code for an error that has already been
// reported to the user.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitCodeForCategory maps an error category to a process exit code.
func exitCodeForCategory(category clierrors.ErrorCategory) int {
	switch category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Configuration:
		return ExitConfigError
	case clierrors.Policy:
		return ExitPolicyViolation
	case clierrors.NotFound:
		return ExitNotFound
	case clierrors.Data:
		return ExitCorruptData
	default:
		return ExitFailure
	}
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitCodeForCategory(clierrors.FromEngineError(err).Category)
}
