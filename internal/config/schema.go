package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ariel-frischer/versionlog/internal/versioning"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeString
	TypeEnum
	TypeVersion
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeVersion:
		return "version"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type and validation rules.
type ConfigKeySchema struct {
	Path          string          // Key name (e.g., "branch_mode")
	Type          ConfigValueType // Expected value type for validation
	AllowedValues []string        // Valid values for enum types (empty for non-enums)
	Description   string          // Human-readable description for help text
	Default       interface{}     // Default value
}

// KnownKeys is the registry of all settable configuration keys with their schemas.
// The inline "template" map is edited in YAML directly and is not listed.
var KnownKeys = map[string]ConfigKeySchema{
	"root": {
		Path:        "root",
		Type:        TypeString,
		Description: "Directory holding one JSON file per change record",
		Default:     DefaultRoot,
	},
	"baseline": {
		Path:        "baseline",
		Type:        TypeVersion,
		Description: "Version the record history is folded onto",
		Default:     "0.0.0",
	},
	"branch_policy": {
		Path:        "branch_policy",
		Type:        TypeBool,
		Description: "Allow one record per committed git branch",
		Default:     true,
	},
	"branch_mode": {
		Path:          "branch_mode",
		Type:          TypeEnum,
		AllowedValues: []string{"commit", "name"},
		Description:   "Branch identity: HEAD commit hash or short branch name",
		Default:       "commit",
	},
	"template_path": {
		Path:        "template_path",
		Type:        TypeString,
		Description: "Record template JSON (default: <root>/stubs/template.json)",
		Default:     "",
	},
	"debug": {
		Path:        "debug",
		Type:        TypeBool,
		Description: "Enable debug logging",
		Default:     false,
	},
}

// SortedKeys returns the known key names in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for key := range KnownKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeEnum:
		return parseEnumValue(schema, value)
	case TypeVersion:
		return parseVersionValue(value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseVersionValue normalizes a baseline version to X.Y.Z.
func parseVersionValue(value string) (ParsedValue, error) {
	triple, err := versioning.ParseTriple(value)
	if err != nil {
		return ParsedValue{}, err
	}
	return ParsedValue{Raw: value, Parsed: triple.String(), Type: TypeVersion}, nil
}

// parseEnumValue validates a value against allowed enum options.
func parseEnumValue(schema ConfigKeySchema, value string) (ParsedValue, error) {
	for _, allowed := range schema.AllowedValues {
		if value == allowed {
			return ParsedValue{Raw: value, Parsed: value, Type: TypeEnum}, nil
		}
	}
	return ParsedValue{}, fmt.Errorf(
		"invalid value: %q (valid options: %s)",
		value, strings.Join(schema.AllowedValues, ", "),
	)
}
