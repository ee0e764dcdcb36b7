package record

import (
	"errors"
	"fmt"
)

// UncommittedBranchError is returned when branch policy is enabled and the
// checkout has no resolvable branch identity (for example, no commits yet).
type UncommittedBranchError struct{}

// Error implements the error interface.
func (e *UncommittedBranchError) Error() string {
	return "you need to commit your current git branch before creating a log"
}

// DuplicateLogError is returned when branch policy is enabled and a record
// already exists for the branch.
type DuplicateLogError struct {
	BranchID string
}

// Error implements the error interface.
func (e *DuplicateLogError) Error() string {
	return fmt.Sprintf("a log has already been created relating to branch %s", e.BranchID)
}

// RecordNotFoundError is returned when a lookup by id or branch finds nothing.
type RecordNotFoundError struct {
	ID       string
	BranchID string
}

// Error implements the error interface.
func (e *RecordNotFoundError) Error() string {
	if e.ID == "" && e.BranchID != "" {
		return fmt.Sprintf("no log exists for branch %s", e.BranchID)
	}
	return fmt.Sprintf("no log exists with id %q", e.ID)
}

// CorruptRecordError is returned when a stored file fails to decode or is
// missing a required field.
type CorruptRecordError struct {
	// Path is the offending file, filled in by the store.
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *CorruptRecordError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corrupt record %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("corrupt record: %s", e.Reason)
}

// Unwrap returns the underlying decode error, if any.
func (e *CorruptRecordError) Unwrap() error {
	return e.Err
}

// IsUncommittedBranch returns true if err is an UncommittedBranchError.
func IsUncommittedBranch(err error) bool {
	var target *UncommittedBranchError
	return errors.As(err, &target)
}

// IsDuplicateLog returns true if err is a DuplicateLogError.
func IsDuplicateLog(err error) bool {
	var target *DuplicateLogError
	return errors.As(err, &target)
}

// IsRecordNotFound returns true if err is a RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	var target *RecordNotFoundError
	return errors.As(err, &target)
}

// IsCorruptRecord returns true if err is a CorruptRecordError.
func IsCorruptRecord(err error) bool {
	var target *CorruptRecordError
	return errors.As(err, &target)
}
