package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/versionlog/internal/record"
)

// Common error messages for the versionlog CLI.
// These templates ensure consistent, actionable error messages.

// UncommittedBranch creates an error for a checkout without a resolvable branch.
func UncommittedBranch(cause error) *CLIError {
	return &CLIError{
		Category: Policy,
		Message:  cause.Error(),
		Remediation: []string{
			"Commit your work on this branch, then run the command again",
			"Or disable branch tracking: versionlog config set branch_policy false",
		},
		Cause: cause,
	}
}

// DuplicateLog creates an error for a branch that already has a record.
func DuplicateLog(cause *record.DuplicateLogError) *CLIError {
	return &CLIError{
		Category: Policy,
		Message:  cause.Error(),
		Remediation: []string{
			"Refresh the existing record instead: versionlog log update",
			"Or create the change from a new branch",
		},
		Cause: cause,
	}
}

// RecordNotFound creates an error for a lookup that matched nothing.
func RecordNotFound(cause *record.RecordNotFoundError) *CLIError {
	remediation := []string{"List existing records with: versionlog list"}
	if cause.ID == "" {
		remediation = append(remediation, "Create a record for this branch with: versionlog log <level>")
	}
	return &CLIError{
		Category:    NotFound,
		Message:     cause.Error(),
		Remediation: remediation,
		Cause:       cause,
	}
}

// CorruptRecord creates an error for a record file that failed to decode.
func CorruptRecord(cause *record.CorruptRecordError) *CLIError {
	steps := []string{"Fix or remove the file, then run the command again"}
	if cause.Path != "" {
		steps = []string{
			fmt.Sprintf("Fix the JSON in %s (id, type and timestamp are required)", cause.Path),
			"Or remove the file if the record is not needed",
		}
	}
	return &CLIError{
		Category:    Data,
		Message:     cause.Error(),
		Remediation: steps,
		Cause:       cause,
	}
}

// InvalidLevel creates an error for an unknown bump level.
func InvalidLevel(provided string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid level: %s", provided),
		"versionlog current --next <major|minor|patch>",
		"Valid levels: "+strings.Join(record.LevelNames(), ", "),
	)
}

// InvalidFormat creates an error for an unsupported output format.
func InvalidFormat(provided string, valid ...string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid format: %s", provided),
		fmt.Sprintf("Valid formats: %v", valid),
	)
}

// ConfigLoad creates an error for configuration that failed to load.
func ConfigLoad(err error) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  err.Error(),
		Remediation: []string{
			"Check .versionlog/config.yml and ~/.config/versionlog/config.yml",
			"List valid keys with: versionlog config keys",
		},
		Cause: err,
	}
}

// FromEngineError maps an engine error to a CLIError. Errors that are
// already CLIErrors pass through; anything else becomes a runtime error.
func FromEngineError(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	var (
		duplicate *record.DuplicateLogError
		notFound  *record.RecordNotFoundError
		corrupt   *record.CorruptRecordError
	)
	switch {
	case record.IsUncommittedBranch(err):
		return UncommittedBranch(err)
	case stderrors.As(err, &duplicate):
		return DuplicateLog(duplicate)
	case stderrors.As(err, &notFound):
		return RecordNotFound(notFound)
	case stderrors.As(err, &corrupt):
		// Keep the wrapping context; the path is already in the message.
		cliErr := CorruptRecord(corrupt)
		cliErr.Message = err.Error()
		cliErr.Cause = err
		return cliErr
	default:
		return Wrap(err, Runtime)
	}
}
