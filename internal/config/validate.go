package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/ariel-frischer/versionlog/internal/versioning"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Custom validator tags used on Configuration.
const (
	tagSemverTriple = "semver_triple"
	tagJSONFile     = "json_file"
)

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// configValidator returns the shared validator. Field errors are named by
// their koanf key so messages match what users write in config.yml.
func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tagSemverTriple, func(fl validator.FieldLevel) bool {
			_, err := versioning.ParseTriple(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation(tagJSONFile, func(fl validator.FieldLevel) bool {
			return strings.EqualFold(filepath.Ext(fl.Field().String()), ".json")
		})
		validate = v
	})
	return validate
}

// ValidateYAMLSyntax checks that data parses as YAML. Empty data is valid.
// Syntax errors carry the line and column yaml.v3 reports.
func ValidateYAMLSyntax(data []byte, filePath string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		line, column := extractLineColumn(err.Error())
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  cleanYAMLError(err.Error()),
		}
	}
	return nil
}

// ValidateConfigValues checks cfg against its validate tags and returns the
// first failure as a ValidationError naming the config key.
func ValidateConfigValues(cfg *Configuration, filePath string) error {
	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		return &ValidationError{
			FilePath: filePath,
			Field:    fieldErr.Field(),
			Message:  formatValidationError(fieldErr),
		}
	}
	return &ValidationError{FilePath: filePath, Message: err.Error()}
}

// extractLineColumn attempts to extract line and column numbers from a YAML error message.
// Returns 0, 0 if unable to extract.
func extractLineColumn(errMsg string) (line, column int) {
	// yaml.v3 errors look like: "yaml: line 5: could not find expected ':'"
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError strips the "yaml: line X:" prefix.
func cleanYAMLError(errMsg string) string {
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 && strings.HasPrefix(errMsg, "yaml:") {
		return errMsg[idx+2:]
	}
	return errMsg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case tagSemverTriple:
		if _, err := versioning.ParseTriple(fmt.Sprint(fieldErr.Value())); err != nil {
			return err.Error()
		}
		return "must be a version such as 1.4.0"
	case tagJSONFile:
		return "must point to a .json file"
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}
