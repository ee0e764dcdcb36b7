// Package branch implements the branch policy applied before a change record
// is created: a record needs a committed branch, and a branch gets at most
// one record.
//
// Resolving the branch identity is delegated to a Resolver. GitResolver is
// the production implementation; tests inject Static or ResolverFunc.
package branch

import (
	"fmt"

	"github.com/ariel-frischer/versionlog/internal/record"
)

// Records looks up existing records for a branch.
type Records interface {
	RecordsForBranch(branchID string) ([]record.Record, error)
}

// Guard enforces branch policy. When Enabled is false every check passes
// and ResolveBranch returns "".
type Guard struct {
	Enabled  bool
	Resolver Resolver
	Records  Records
}

// NewGuard creates a Guard.
func NewGuard(enabled bool, resolver Resolver, records Records) *Guard {
	return &Guard{Enabled: enabled, Resolver: resolver, Records: records}
}

// ResolveBranch returns the current branch identifier, or "" when policy
// is disabled. The resolver is not consulted when disabled.
func (g *Guard) ResolveBranch() (string, error) {
	if !g.Enabled || g.Resolver == nil {
		return "", nil
	}
	id, err := g.Resolver.ResolveBranch()
	if err != nil {
		return "", fmt.Errorf("resolving branch: %w", err)
	}
	return id, nil
}

// AssertCreatable fails with UncommittedBranchError when branchID is empty
// and with DuplicateLogError when a record already exists for it.
func (g *Guard) AssertCreatable(branchID string) error {
	if !g.Enabled {
		return nil
	}
	if branchID == "" {
		return &record.UncommittedBranchError{}
	}
	if g.Records == nil {
		return nil
	}

	existing, err := g.Records.RecordsForBranch(branchID)
	if err != nil {
		return fmt.Errorf("checking existing logs: %w", err)
	}
	if len(existing) > 0 {
		return &record.DuplicateLogError{BranchID: branchID}
	}
	return nil
}
