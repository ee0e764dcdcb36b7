// Package store persists change records as one JSON file per record in a
// single directory. There is no database and no index: every read re-scans
// the directory, so results always reflect the filesystem at call time.
//
// The store assumes a single writer. Callers racing on Append from several
// processes must serialize access themselves.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ariel-frischer/versionlog/internal/record"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileExt is the extension given to record files.
const FileExt = ".json"

// filenameTimeLayout encodes creation time first so that lexical and
// chronological order agree.
const filenameTimeLayout = "2006_01_02_150405"

// maxSequence bounds the records that can share one creation second.
const maxSequence = 9999

// loadConcurrency bounds the number of record files read at once.
const loadConcurrency = 8

// Dir is a directory-backed record store.
type Dir struct {
	root   string
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Dir.
type Option func(*Dir)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dir) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the clock used by Touch.
func WithClock(now func() time.Time) Option {
	return func(d *Dir) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a store rooted at root. The directory is not created until
// EnsureReady or Append is called.
func New(root string, opts ...Option) *Dir {
	d := &Dir{
		root:   root,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Root returns the storage directory.
func (d *Dir) Root() string {
	return d.root
}

// Path returns the full path of a record file.
func (d *Dir) Path(filename string) string {
	return filepath.Join(d.root, filename)
}

// EnsureReady creates the storage directory and any missing parents.
func (d *Dir) EnsureReady() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("creating record directory %s: %w", d.root, err)
	}
	return nil
}

// Entry is a decoded record together with the file it was read from.
type Entry struct {
	Filename string
	Record   record.Record
}

// List returns every record, newest first.
func (d *Dir) List() ([]record.Record, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}
	records := make([]record.Record, len(entries))
	for i, e := range entries {
		records[len(entries)-1-i] = e.Record
	}
	return records, nil
}

// Chronological returns every record, oldest first.
func (d *Dir) Chronological() ([]record.Record, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}
	records := make([]record.Record, len(entries))
	for i, e := range entries {
		records[i] = e.Record
	}
	return records, nil
}

// Entries loads every record file, ordered oldest first by timestamp with
// ties broken by filename, whose sequence keeps creation order within a
// second. A missing directory yields an empty history.
func (d *Dir) Entries() ([]Entry, error) {
	names, err := d.filenames()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(names))
	errs := make([]error, len(names))
	var g errgroup.Group
	g.SetLimit(loadConcurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			rec, err := d.Load(name)
			entries[i] = Entry{Filename: name, Record: rec}
			errs[i] = err
			return nil
		})
	}
	// Goroutines record failures in errs and always return nil.
	g.Wait()

	// Report the first failure in filename order so the same file is
	// always named.
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Record.Timestamp != entries[j].Record.Timestamp {
			return entries[i].Record.Timestamp < entries[j].Record.Timestamp
		}
		return entries[i].Filename < entries[j].Filename
	})

	d.logger.Debug("loaded records", zap.String("root", d.root), zap.Int("count", len(entries)))
	return entries, nil
}

// filenames lists the regular record files under root, skipping
// directories (such as the stubs directory) and hidden files.
func (d *Dir) filenames() ([]string, error) {
	dirEntries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading record directory %s: %w", d.root, err)
	}

	names := make([]string, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Load reads and decodes a single record file.
func (d *Dir) Load(filename string) (record.Record, error) {
	path := d.Path(filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return record.Record{}, fmt.Errorf("reading record %s: %w", path, err)
	}

	rec, err := record.Decode(data)
	if err != nil {
		var corrupt *record.CorruptRecordError
		if errors.As(err, &corrupt) {
			corrupt.Path = path
		}
		return record.Record{}, err
	}
	return rec, nil
}

// Filename derives the file name for a new record: creation time (UTC),
// a zero-padded sequence within that second, bump level and the version
// the record produces. Records created in the same second sort by sequence.
func Filename(rec record.Record, seq int, version string) string {
	return fmt.Sprintf("%s_%04d_%s_%s%s", stampPrefix(rec.Timestamp), seq, rec.Type, version, FileExt)
}

func stampPrefix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(filenameTimeLayout)
}

// Append writes a new record and returns its filename. The sequence starts
// after the files already stamped with the same second. Existing files are
// never overwritten: a taken name moves on to the next sequence.
func (d *Dir) Append(rec record.Record, version string) (string, error) {
	if err := d.EnsureReady(); err != nil {
		return "", err
	}

	data, err := record.Encode(rec)
	if err != nil {
		return "", err
	}

	seq, err := d.nextSequence(rec.Timestamp)
	if err != nil {
		return "", err
	}

	var filename string
	for ; seq <= maxSequence; seq++ {
		filename = Filename(rec, seq, version)
		err = d.create(filename, data)
		if !errors.Is(err, os.ErrExist) {
			break
		}
	}
	if err != nil {
		return "", err
	}

	d.logger.Debug("appended record",
		zap.String("file", filename),
		zap.String("id", rec.ID),
		zap.String("type", string(rec.Type)))
	return filename, nil
}

// create writes data to a file that must not already exist.
func (d *Dir) create(filename string, data []byte) error {
	path := d.Path(filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating record %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing record %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing record %s: %w", path, err)
	}
	return nil
}

// nextSequence returns one more than the number of files created in the
// same second as ts.
func (d *Dir) nextSequence(ts int64) (int, error) {
	names, err := d.filenames()
	if err != nil {
		return 0, err
	}
	prefix := stampPrefix(ts) + "_"
	seq := 1
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			seq++
		}
	}
	return seq, nil
}

// FindByID returns the filename of the record with the given id.
// This is a linear scan over every file.
func (d *Dir) FindByID(id string) (string, error) {
	names, err := d.filenames()
	if err != nil {
		return "", err
	}
	sort.Strings(names)

	for _, name := range names {
		rec, err := d.Load(name)
		if err != nil {
			return "", err
		}
		if rec.ID == id {
			return name, nil
		}
	}
	return "", &record.RecordNotFoundError{ID: id}
}

// FindByBranch returns every record created for the branch, newest first.
func (d *Dir) FindByBranch(branchID string) ([]Entry, error) {
	entries, err := d.Entries()
	if err != nil {
		return nil, err
	}

	var matches []Entry
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Record.BranchID == branchID {
			matches = append(matches, entries[i])
		}
	}
	return matches, nil
}

// RecordsForBranch returns the records created for the branch, newest first.
func (d *Dir) RecordsForBranch(branchID string) ([]record.Record, error) {
	matches, err := d.FindByBranch(branchID)
	if err != nil {
		return nil, err
	}
	records := make([]record.Record, len(matches))
	for i, m := range matches {
		records[i] = m.Record
	}
	return records, nil
}

// Touch sets the record's timestamp to now and rewrites its file in place.
// No other field changes.
func (d *Dir) Touch(id string) (string, error) {
	filename, err := d.FindByID(id)
	if err != nil {
		return "", err
	}

	rec, err := d.Load(filename)
	if err != nil {
		return "", err
	}
	rec.Timestamp = d.now().Unix()

	data, err := record.Encode(rec)
	if err != nil {
		return "", err
	}
	if err := atomicWriteToFile(d.Path(filename), data); err != nil {
		return "", err
	}

	d.logger.Debug("touched record", zap.String("file", filename), zap.Int64("timestamp", rec.Timestamp))
	return filename, nil
}

// atomicWriteToFile writes data via a hidden temp file in the same
// directory and renames it over path.
func atomicWriteToFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
