package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Level is the semantic-version bump level a record carries.
type Level string

const (
	Major Level = "major"
	Minor Level = "minor"
	Patch Level = "patch"
)

// Levels returns the valid bump levels in precedence order.
func Levels() []Level {
	return []Level{Major, Minor, Patch}
}

// LevelNames returns Levels as strings, e.g. for help text.
func LevelNames() []string {
	names := make([]string, 0, 3)
	for _, l := range Levels() {
		names = append(names, string(l))
	}
	return names
}

// ParseLevel parses a bump level, case-insensitively.
// Returns an error for anything not in Levels.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Levels(), l) {
		return l, nil
	}
	return "", fmt.Errorf("invalid level %q (expected one of: %s)", s, strings.Join(LevelNames(), ", "))
}

// NormalizeLevel is the lenient form of ParseLevel used for command input:
// unknown or empty levels fall back to patch.
func NormalizeLevel(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		return Patch
	}
	return l
}

// Reserved field names. These keys are owned by Record and always override
// template-supplied values.
const (
	FieldID          = "id"
	FieldType        = "type"
	FieldBranchID    = "branch_id"
	FieldDescription = "description"
	FieldAuthor      = "author"
	FieldTags        = "tags"
	FieldTimestamp   = "timestamp"
)

var reservedFields = map[string]bool{
	FieldID:          true,
	FieldType:        true,
	FieldBranchID:    true,
	FieldDescription: true,
	FieldAuthor:      true,
	FieldTags:        true,
	FieldTimestamp:   true,
}

// IsReserved reports whether name is one of the reserved record fields.
func IsReserved(name string) bool {
	return reservedFields[name]
}

// Record is a single change record.
// Only Timestamp may change after creation (see store.Touch).
type Record struct {
	ID          string
	Type        Level
	BranchID    string
	Description string
	Author      string
	Tags        string
	// Timestamp is the creation time in unix seconds, re-set on update.
	Timestamp int64
	// Extra holds template fields as raw JSON so they round-trip unchanged.
	Extra map[string]json.RawMessage
}

// New creates a record with a fresh id and the given creation time.
func New(level Level, branchID string, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Type:      level,
		BranchID:  branchID,
		Timestamp: now.Unix(),
	}
}

// Time returns the record timestamp as a time.Time.
func (r Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0)
}

// SetExtra merges template values into the record's extra fields.
// Reserved names are ignored; later calls overwrite earlier values.
func (r *Record) SetExtra(values map[string]any) error {
	for key, value := range values {
		if IsReserved(key) {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding template field %q: %w", key, err)
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = raw
	}
	return nil
}

// MarshalJSON encodes the record as a flat object. Extra fields are written
// first and the reserved fields overwrite them.
func (r Record) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(r.Extra)+len(reservedFields))
	for key, raw := range r.Extra {
		fields[key] = raw
	}

	fields[FieldID] = r.ID
	fields[FieldType] = string(r.Type)
	fields[FieldBranchID] = r.BranchID
	fields[FieldDescription] = r.Description
	fields[FieldAuthor] = r.Author
	fields[FieldTags] = r.Tags
	fields[FieldTimestamp] = r.Timestamp

	return json.Marshal(fields)
}

// Fields returns the record as a flat map with extra fields decoded.
// Numbers are kept as json.Number so integers survive YAML encoding.
func (r Record) Fields() (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// UnmarshalJSON decodes a record, failing with CorruptRecordError when the
// data is not an object or a reserved field is missing or mistyped.
func (r *Record) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// Encode renders the record in its on-disk form: indented JSON with sorted
// keys and a trailing newline.
func Encode(r Record) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding record %s: %w", r.ID, err)
	}
	return append(data, '\n'), nil
}

// Decode parses the on-disk form of a record.
func Decode(data []byte) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, &CorruptRecordError{Reason: "not a JSON object", Err: err}
	}
	if fields == nil {
		return Record{}, &CorruptRecordError{Reason: "not a JSON object"}
	}

	var rec Record
	if err := requireString(fields, FieldID, &rec.ID); err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		return Record{}, &CorruptRecordError{Reason: "field \"id\" is empty"}
	}

	var level string
	if err := requireString(fields, FieldType, &level); err != nil {
		return Record{}, err
	}
	rec.Type = Level(level)

	rawTimestamp, ok := fields[FieldTimestamp]
	if !ok || isNull(rawTimestamp) {
		return Record{}, &CorruptRecordError{Reason: "missing required field \"timestamp\""}
	}
	if err := json.Unmarshal(rawTimestamp, &rec.Timestamp); err != nil {
		return Record{}, &CorruptRecordError{Reason: "field \"timestamp\" is not an integer", Err: err}
	}

	optional := []struct {
		name string
		dest *string
	}{
		{FieldBranchID, &rec.BranchID},
		{FieldDescription, &rec.Description},
		{FieldAuthor, &rec.Author},
		{FieldTags, &rec.Tags},
	}
	for _, field := range optional {
		if err := optionalString(fields, field.name, field.dest); err != nil {
			return Record{}, err
		}
	}

	for key, raw := range fields {
		if IsReserved(key) {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}
		rec.Extra[key] = compact(raw)
	}

	return rec, nil
}

// requireString decodes a mandatory string field.
func requireString(fields map[string]json.RawMessage, name string, dest *string) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return &CorruptRecordError{Reason: fmt.Sprintf("missing required field %q", name)}
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &CorruptRecordError{Reason: fmt.Sprintf("field %q is not a string", name), Err: err}
	}
	return nil
}

// optionalString decodes a string field that may be absent or null.
func optionalString(fields map[string]json.RawMessage, name string, dest *string) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &CorruptRecordError{Reason: fmt.Sprintf("field %q is not a string", name), Err: err}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// compact strips insignificant whitespace so decoded extras compare equal
// regardless of how the file was indented.
func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}
