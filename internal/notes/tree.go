package notes

import (
	"fmt"
	"sort"

	"github.com/ariel-frischer/versionlog/internal/record"
	"github.com/ariel-frischer/versionlog/internal/versioning"
)

// Tree groups records by major, then minor, then patch number.
type Tree struct {
	Majors map[int]*MajorNode
}

// MajorNode holds every minor bucket under one major number.
type MajorNode struct {
	Number int
	Minors map[int]*MinorNode
}

// MinorNode holds the records for each patch number under one minor.
type MinorNode struct {
	Number  int
	Patches map[int]record.Record
}

// Release is a flattened leaf of the tree.
type Release struct {
	Version versioning.Triple
	Record  record.Record
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Majors: make(map[int]*MajorNode)}
}

// Insert stores rec at the given version, replacing any record already there.
func (t *Tree) Insert(v versioning.Triple, rec record.Record) {
	major, ok := t.Majors[v.Major]
	if !ok {
		major = &MajorNode{Number: v.Major, Minors: make(map[int]*MinorNode)}
		t.Majors[v.Major] = major
	}

	minor, ok := major.Minors[v.Minor]
	if !ok {
		minor = &MinorNode{Number: v.Minor, Patches: make(map[int]record.Record)}
		major.Minors[v.Minor] = minor
	}

	minor.Patches[v.Patch] = rec
}

// Lookup returns the record stored at the given version.
func (t *Tree) Lookup(v versioning.Triple) (record.Record, bool) {
	major, ok := t.Majors[v.Major]
	if !ok {
		return record.Record{}, false
	}
	minor, ok := major.Minors[v.Minor]
	if !ok {
		return record.Record{}, false
	}
	rec, ok := minor.Patches[v.Patch]
	return rec, ok
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	n := 0
	for _, major := range t.Majors {
		for _, minor := range major.Minors {
			n += len(minor.Patches)
		}
	}
	return n
}

// MajorKeys returns the major numbers in descending order.
func (t *Tree) MajorKeys() []int {
	keys := make([]int, 0, len(t.Majors))
	for k := range t.Majors {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// MinorKeys returns the minor numbers in descending order.
func (m *MajorNode) MinorKeys() []int {
	keys := make([]int, 0, len(m.Minors))
	for k := range m.Minors {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// PatchKeys returns the patch numbers in descending order.
func (m *MinorNode) PatchKeys() []int {
	keys := make([]int, 0, len(m.Patches))
	for k := range m.Patches {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// Releases flattens the tree, newest version first.
func (t *Tree) Releases() []Release {
	releases := make([]Release, 0, t.Len())
	for _, majorNum := range t.MajorKeys() {
		major := t.Majors[majorNum]
		for _, minorNum := range major.MinorKeys() {
			minor := major.Minors[minorNum]
			for _, patchNum := range minor.PatchKeys() {
				releases = append(releases, Release{
					Version: versioning.Triple{Major: majorNum, Minor: minorNum, Patch: patchNum},
					Record:  minor.Patches[patchNum],
				})
			}
		}
	}
	return releases
}

// Build folds records (oldest first) over the baseline and files each record
// under the version it produced.
func Build(baseline versioning.Triple, records []record.Record) *Tree {
	tree := NewTree()
	current := baseline
	for _, rec := range records {
		current = current.Bump(rec.Type)
		tree.Insert(current, rec)
	}
	return tree
}

// Builder builds trees from a record history on demand.
type Builder struct {
	Baseline versioning.Triple
	History  versioning.History
}

// NewBuilder creates a Builder.
func NewBuilder(baseline versioning.Triple, history versioning.History) *Builder {
	return &Builder{Baseline: baseline, History: history}
}

// Build re-reads the history and builds a fresh tree.
func (b *Builder) Build() (*Tree, error) {
	records, err := b.History.Chronological()
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return Build(b.Baseline, records), nil
}
