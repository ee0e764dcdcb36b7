// Package versioning derives the semantic version of a project from its
// change-record history.
//
// The version is never stored: it is recomputed by folding every record, in
// chronological order, over a configurable baseline. A major record resets
// minor and patch to zero (not to the baseline's values), a minor record
// resets patch, and any other record bumps patch.
package versioning

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ariel-frischer/versionlog/internal/record"
	"golang.org/x/mod/semver"
)

// Triple is a major.minor.patch version number.
type Triple struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// String renders the triple as "major.minor.patch".
func (t Triple) String() string {
	return fmt.Sprintf("%d.%d.%d", t.Major, t.Minor, t.Patch)
}

// Bump applies one increment of the given level. Unknown levels bump patch.
func (t Triple) Bump(level record.Level) Triple {
	switch level {
	case record.Major:
		return Triple{Major: t.Major + 1}
	case record.Minor:
		return Triple{Major: t.Major, Minor: t.Minor + 1}
	default:
		return Triple{Major: t.Major, Minor: t.Minor, Patch: t.Patch + 1}
	}
}

// ParseTriple parses a baseline such as "3.22.4" or "v3.22.4".
// Shorthand forms ("v1", "1.2") are completed with zeros; pre-release and
// build suffixes are rejected because the fold has no notion of them.
func ParseTriple(s string) (Triple, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Triple{}, nil
	}

	v := trimmed
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return Triple{}, fmt.Errorf("invalid version %q (expected: X.Y.Z)", s)
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return Triple{}, fmt.Errorf("invalid version %q: pre-release and build metadata are not supported", s)
	}

	parts := strings.Split(strings.TrimPrefix(semver.Canonical(v), "v"), ".")
	if len(parts) != 3 {
		return Triple{}, fmt.Errorf("invalid version %q (expected: X.Y.Z)", s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Triple{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}

	return Triple{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Fold applies each level in order to the baseline.
func Fold(baseline Triple, levels []record.Level) Triple {
	current := baseline
	for _, level := range levels {
		current = current.Bump(level)
	}
	return current
}

// FoldRecords folds records that are already in chronological order.
func FoldRecords(baseline Triple, records []record.Record) Triple {
	current := baseline
	for _, rec := range records {
		current = current.Bump(rec.Type)
	}
	return current
}

// History supplies the full record history, oldest first.
type History interface {
	Chronological() ([]record.Record, error)
}

// Calculator computes current and prospective versions from a History.
// It keeps no state between calls; every call re-reads the history.
type Calculator struct {
	Baseline Triple
	History  History
}

// NewCalculator creates a Calculator over the given history.
func NewCalculator(baseline Triple, history History) *Calculator {
	return &Calculator{Baseline: baseline, History: history}
}

// Current folds the full history over the baseline.
func (c *Calculator) Current() (Triple, error) {
	records, err := c.History.Chronological()
	if err != nil {
		return Triple{}, fmt.Errorf("loading history: %w", err)
	}
	return FoldRecords(c.Baseline, records), nil
}

// Next returns the version a new record of the given level would produce.
func (c *Calculator) Next(level record.Level) (Triple, error) {
	current, err := c.Current()
	if err != nil {
		return Triple{}, err
	}
	return current.Bump(level), nil
}
