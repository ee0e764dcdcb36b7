package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ariel-frischer/versionlog/internal/branch"
	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/ariel-frischer/versionlog/internal/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances one minute per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Minute)
		return now
	}
}

func newTestLedger(t *testing.T, cfg Config, resolver branch.Resolver) *Ledger {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = filepath.Join(t.TempDir(), "version")
	}
	return New(cfg, resolver, WithClock(stepClock(time.Unix(1700000000, 0))))
}

func TestLedger_Init(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	require.NoError(t, l.Init())
	require.NoError(t, l.Init())

	info, err := os.Stat(l.Config().Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLedger_CreateFilenames(t *testing.T) {
	tests := map[string]struct {
		baseline versioning.Triple
		levels   []record.Level
		want     []string
	}{
		"patches from zero": {
			levels: []record.Level{record.Patch, record.Patch},
			want:   []string{"_patch_0.0.1.json", "_patch_0.0.2.json"},
		},
		"major from baseline resets lower components": {
			baseline: versioning.Triple{Major: 3, Minor: 22, Patch: 4},
			levels:   []record.Level{record.Major, record.Minor},
			want:     []string{"_major_4.0.0.json", "_minor_4.1.0.json"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := newTestLedger(t, Config{Baseline: tt.baseline}, nil)
			for i, level := range tt.levels {
				filename, err := l.Create(CreateRequest{Level: level})
				require.NoError(t, err)
				assert.True(t, strings.HasSuffix(filename, tt.want[i]), "got %s", filename)
			}
		})
	}
}

func TestLedger_SameSecondKeepsCreationOrder(t *testing.T) {
	tests := map[string]struct {
		levels      []record.Level
		wantCurrent string
		wantPaths   []versioning.Triple
	}{
		"patch then minor": {
			levels:      []record.Level{record.Patch, record.Minor},
			wantCurrent: "0.1.0",
			wantPaths:   []versioning.Triple{{Patch: 1}, {Minor: 1}},
		},
		"major then patch": {
			levels:      []record.Level{record.Major, record.Patch},
			wantCurrent: "1.0.1",
			wantPaths:   []versioning.Triple{{Major: 1}, {Major: 1, Patch: 1}},
		},
		"ten patches": {
			levels: []record.Level{
				record.Patch, record.Patch, record.Patch, record.Patch, record.Patch,
				record.Patch, record.Patch, record.Patch, record.Patch, record.Patch,
			},
			wantCurrent: "0.0.10",
			wantPaths:   []versioning.Triple{{Patch: 9}, {Patch: 10}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			frozen := time.Unix(1700000000, 0)
			l := New(Config{Root: filepath.Join(t.TempDir(), "version")}, nil,
				WithClock(func() time.Time { return frozen }))

			var filenames []string
			for _, level := range tt.levels {
				filename, err := l.Create(CreateRequest{Level: level})
				require.NoError(t, err)
				filenames = append(filenames, filename)
			}

			current, err := l.CurrentVersion()
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, current)

			// Each record sits in the tree under the version its filename names.
			tree, err := l.PatchNotesTree()
			require.NoError(t, err)
			offset := len(filenames) - len(tt.wantPaths)
			for i, path := range tt.wantPaths {
				filename := filenames[offset+i]
				assert.True(t, strings.HasSuffix(filename, "_"+path.String()+".json"), filename)

				stored, err := l.Store().Load(filename)
				require.NoError(t, err)
				got, ok := tree.Lookup(path)
				require.True(t, ok, "missing %s", path)
				assert.Equal(t, stored.ID, got.ID)
			}
		})
	}
}

func TestLedger_CreateRejectsUnknownLevel(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	_, err := l.Create(CreateRequest{Level: "huge"})
	assert.ErrorContains(t, err, "invalid level")
}

func TestLedger_CreateMergesTemplate(t *testing.T) {
	cfg := Config{
		Template: map[string]any{
			"ticket":      "TEMPLATE",
			"reviewed":    false,
			"id":          "from-template",
			"description": "template description",
		},
	}
	l := newTestLedger(t, cfg, nil)

	filename, err := l.Create(CreateRequest{
		Level:       record.Minor,
		Description: "Add login",
		Author:      "dev",
		Tags:        "auth",
		Overrides:   map[string]any{"ticket": "REL-42", "timestamp": "never"},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(l.Store().Path(filename))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "REL-42", fields["ticket"])
	assert.Equal(t, false, fields["reviewed"])
	assert.Equal(t, "Add login", fields["description"])
	assert.Equal(t, "dev", fields["author"])
	assert.Equal(t, "auth", fields["tags"])
	assert.Equal(t, "minor", fields["type"])
	assert.NotEqual(t, "from-template", fields["id"])
	assert.Equal(t, float64(1700000000), fields["timestamp"])
}

func TestLedger_BranchPolicy(t *testing.T) {
	tests := map[string]struct {
		policy   bool
		branches []string
		wantErr  func(error) bool
	}{
		"duplicate branch rejected": {
			policy:   true,
			branches: []string{"abc123", "abc123"},
			wantErr:  record.IsDuplicateLog,
		},
		"empty branch rejected": {
			policy:   true,
			branches: []string{""},
			wantErr:  record.IsUncommittedBranch,
		},
		"distinct branches allowed": {
			policy:   true,
			branches: []string{"abc123", "def456"},
		},
		"policy disabled allows repeats": {
			policy:   false,
			branches: []string{"", ""},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l := newTestLedger(t, Config{BranchPolicy: tt.policy}, nil)

			var err error
			for _, id := range tt.branches {
				_, err = l.Create(CreateRequest{BranchID: id, Level: record.Patch})
				if err != nil {
					break
				}
			}

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLedger_DuplicateLeavesHistoryUnchanged(t *testing.T) {
	l := newTestLedger(t, Config{BranchPolicy: true}, nil)
	_, err := l.Create(CreateRequest{BranchID: "abc123", Level: record.Major})
	require.NoError(t, err)

	_, err = l.Create(CreateRequest{BranchID: "abc123", Level: record.Major})
	require.Error(t, err)

	current, err := l.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", current)
}

func TestLedger_ResolveBranch(t *testing.T) {
	calls := 0
	resolver := branch.ResolverFunc(func() (string, error) {
		calls++
		return "abc123", nil
	})

	enabled := newTestLedger(t, Config{BranchPolicy: true}, resolver)
	id, err := enabled.ResolveBranch()
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Equal(t, 1, calls)

	disabled := newTestLedger(t, Config{BranchPolicy: false}, resolver)
	id, err = disabled.ResolveBranch()
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 1, calls)
}

func TestLedger_Versions(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	for _, level := range []record.Level{record.Major, record.Minor, record.Patch} {
		_, err := l.Create(CreateRequest{Level: level})
		require.NoError(t, err)
	}

	current, err := l.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.1.1", current)

	tests := map[string]struct {
		level record.Level
		want  string
	}{
		"major": {level: record.Major, want: "2.0.0"},
		"minor": {level: record.Minor, want: "1.2.0"},
		"patch": {level: record.Patch, want: "1.1.2"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			next, err := l.NextVersion(tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}

	again, err := l.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, current, again)
}

func TestLedger_UpdateChangesOnlyTimestamp(t *testing.T) {
	l := newTestLedger(t, Config{Template: map[string]any{"ticket": "REL-1"}}, nil)
	filename, err := l.Create(CreateRequest{BranchID: "abc", Level: record.Minor, Description: "x"})
	require.NoError(t, err)

	before, err := l.Store().Load(filename)
	require.NoError(t, err)

	updated, err := l.Update(before.ID)
	require.NoError(t, err)
	assert.Equal(t, filename, updated)

	after, err := l.Store().Load(filename)
	require.NoError(t, err)
	assert.Greater(t, after.Timestamp, before.Timestamp)

	after.Timestamp = before.Timestamp
	assert.Equal(t, before, after)
}

func TestLedger_UpdateNotFound(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	_, err := l.Update("missing")
	assert.True(t, record.IsRecordNotFound(err))
}

func TestLedger_UpdateBranch(t *testing.T) {
	l := newTestLedger(t, Config{BranchPolicy: true}, nil)
	filename, err := l.Create(CreateRequest{BranchID: "abc123", Level: record.Patch})
	require.NoError(t, err)
	_, err = l.Create(CreateRequest{BranchID: "def456", Level: record.Patch})
	require.NoError(t, err)

	updated, err := l.UpdateBranch("abc123")
	require.NoError(t, err)
	assert.Equal(t, filename, updated)

	_, err = l.UpdateBranch("")
	assert.True(t, record.IsUncommittedBranch(err))

	_, err = l.UpdateBranch("zzz")
	assert.True(t, record.IsRecordNotFound(err))
	assert.ErrorContains(t, err, "branch zzz")
}

func TestLedger_UpdateReordersHistory(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	first, err := l.Create(CreateRequest{Level: record.Major})
	require.NoError(t, err)
	_, err = l.Create(CreateRequest{Level: record.Minor})
	require.NoError(t, err)

	rec, err := l.Store().Load(first)
	require.NoError(t, err)
	_, err = l.Update(rec.ID)
	require.NoError(t, err)

	// minor now folds before major
	current, err := l.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", current)
}

func TestLedger_PatchNotesTree(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	var ids []string
	for _, level := range []record.Level{record.Patch, record.Major, record.Minor, record.Minor} {
		filename, err := l.Create(CreateRequest{Level: level})
		require.NoError(t, err)
		rec, err := l.Store().Load(filename)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	tree, err := l.PatchNotesTree()
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())

	for i, v := range []versioning.Triple{{Major: 0, Minor: 0, Patch: 1}, {Major: 1, Minor: 0, Patch: 0}, {Major: 1, Minor: 1, Patch: 0}, {Major: 1, Minor: 2, Patch: 0}} {
		rec, ok := tree.Lookup(v)
		require.True(t, ok, "missing %s", v)
		assert.Equal(t, ids[i], rec.ID)
	}
}

func TestLedger_Records(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)

	entries, err := l.Records()
	require.NoError(t, err)
	assert.Empty(t, entries)

	first, err := l.Create(CreateRequest{Level: record.Patch})
	require.NoError(t, err)
	second, err := l.Create(CreateRequest{Level: record.Patch})
	require.NoError(t, err)

	entries, err = l.Records()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second, entries[0].Filename)
	assert.Equal(t, first, entries[1].Filename)
}

func TestLedger_CorruptRecordAborts(t *testing.T) {
	l := newTestLedger(t, Config{}, nil)
	require.NoError(t, l.Init())
	require.NoError(t, os.WriteFile(l.Store().Path("broken.json"), []byte(`{"id": 1}`), 0o644))

	_, err := l.CurrentVersion()
	assert.True(t, record.IsCorruptRecord(err))

	_, err = l.Create(CreateRequest{Level: record.Patch})
	assert.True(t, record.IsCorruptRecord(err))

	_, err = l.PatchNotesTree()
	assert.True(t, record.IsCorruptRecord(err))
}
