// Package ledger is the entry point used by the CLI. It wires the record
// store, branch guard, version calculator and notes builder together from
// one explicit Config, so no component reads global settings.
package ledger

import (
	"fmt"
	"time"

	"github.com/ariel-frischer/versionlog/internal/branch"
	"github.com/ariel-frischer/versionlog/internal/notes"
	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/ariel-frischer/versionlog/internal/store"
	"github.com/ariel-frischer/versionlog/internal/versioning"
	"go.uber.org/zap"
)

// Config is everything the ledger needs from its environment.
type Config struct {
	// Root is the directory holding one JSON file per record.
	Root string
	// Baseline is the version the fold starts from.
	Baseline versioning.Triple
	// BranchPolicy enables the one-record-per-committed-branch rule.
	BranchPolicy bool
	// Template holds default fields merged into every new record.
	Template map[string]any
}

// Ledger exposes the engine operations.
type Ledger struct {
	cfg        Config
	store      *store.Dir
	guard      *branch.Guard
	calculator *versioning.Calculator
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger passed to the ledger and its store.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the clock used for new records and touches.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// CreateRequest describes a record to create.
type CreateRequest struct {
	BranchID    string
	Level       record.Level
	Description string
	Author      string
	Tags        string
	// Overrides are merged over the configured template.
	Overrides map[string]any
}

// New creates a Ledger. resolver may be nil when branch policy is disabled.
func New(cfg Config, resolver branch.Resolver, opts ...Option) *Ledger {
	l := &Ledger{
		cfg:    cfg,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.store = store.New(cfg.Root, store.WithLogger(l.logger), store.WithClock(l.now))
	l.guard = branch.NewGuard(cfg.BranchPolicy, resolver, l.store)
	l.calculator = versioning.NewCalculator(cfg.Baseline, l.store)
	return l
}

// Config returns the configuration the ledger was built with.
func (l *Ledger) Config() Config {
	return l.cfg
}

// Store returns the underlying record store.
func (l *Ledger) Store() *store.Dir {
	return l.store
}

// Init creates the storage root.
func (l *Ledger) Init() error {
	if err := l.store.EnsureReady(); err != nil {
		return fmt.Errorf("initializing %s: %w", l.cfg.Root, err)
	}
	return nil
}

// ResolveBranch returns the current branch identifier, or "" when branch
// policy is disabled.
func (l *Ledger) ResolveBranch() (string, error) {
	return l.guard.ResolveBranch()
}

// Create applies branch policy, builds the record from the template and
// request, and appends it under the version it will produce. It returns the
// new record's filename.
func (l *Ledger) Create(req CreateRequest) (string, error) {
	level, err := record.ParseLevel(string(req.Level))
	if err != nil {
		return "", err
	}

	if err := l.guard.AssertCreatable(req.BranchID); err != nil {
		return "", err
	}

	next, err := l.calculator.Next(level)
	if err != nil {
		return "", err
	}

	rec := record.New(level, req.BranchID, l.now())
	if err := rec.SetExtra(l.cfg.Template); err != nil {
		return "", err
	}
	if err := rec.SetExtra(req.Overrides); err != nil {
		return "", err
	}
	rec.Description = req.Description
	rec.Author = req.Author
	rec.Tags = req.Tags

	filename, err := l.store.Append(rec, next.String())
	if err != nil {
		return "", err
	}

	l.logger.Info("created change record",
		zap.String("file", filename),
		zap.String("id", rec.ID),
		zap.String("level", string(level)),
		zap.String("version", next.String()),
	)
	return filename, nil
}

// CurrentVersion returns the folded version of the full history.
func (l *Ledger) CurrentVersion() (string, error) {
	v, err := l.calculator.Current()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// NextVersion returns the version a new record of level would produce.
func (l *Ledger) NextVersion(level record.Level) (string, error) {
	v, err := l.calculator.Next(level)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Update touches the record with the given id and returns its filename.
func (l *Ledger) Update(id string) (string, error) {
	filename, err := l.store.Touch(id)
	if err != nil {
		return "", err
	}
	l.logger.Info("updated change record", zap.String("file", filename), zap.String("id", id))
	return filename, nil
}

// UpdateBranch touches the newest record created for branchID.
func (l *Ledger) UpdateBranch(branchID string) (string, error) {
	if l.cfg.BranchPolicy && branchID == "" {
		return "", &record.UncommittedBranchError{}
	}

	matches, err := l.store.FindByBranch(branchID)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", &record.RecordNotFoundError{BranchID: branchID}
	}
	return l.Update(matches[0].Record.ID)
}

// PatchNotesTree builds the notes tree over the full history.
func (l *Ledger) PatchNotesTree() (*notes.Tree, error) {
	return notes.NewBuilder(l.cfg.Baseline, l.store).Build()
}

// Records returns every record, newest first.
func (l *Ledger) Records() ([]store.Entry, error) {
	entries, err := l.store.Entries()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
