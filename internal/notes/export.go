package notes

import "fmt"

// MajorExport is the exported form of a major bucket.
type MajorExport struct {
	Notes map[int]MinorExport `json:"notes" yaml:"notes"`
}

// MinorExport is the exported form of a minor bucket.
type MinorExport struct {
	Notes map[int]map[string]any `json:"notes" yaml:"notes"`
}

// Export converts the tree into plain nested maps keyed by version number,
// with each leaf rendered as the record's flat field map.
func Export(t *Tree) (map[int]MajorExport, error) {
	out := make(map[int]MajorExport, len(t.Majors))
	for majorNum, major := range t.Majors {
		minors := make(map[int]MinorExport, len(major.Minors))
		for minorNum, minor := range major.Minors {
			patches := make(map[int]map[string]any, len(minor.Patches))
			for patchNum, rec := range minor.Patches {
				fields, err := rec.Fields()
				if err != nil {
					return nil, fmt.Errorf("exporting %d.%d.%d: %w", majorNum, minorNum, patchNum, err)
				}
				patches[patchNum] = fields
			}
			minors[minorNum] = MinorExport{Notes: patches}
		}
		out[majorNum] = MajorExport{Notes: minors}
	}
	return out, nil
}
