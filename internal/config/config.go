// versionlog - Change-record based release versioning
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/versionlog

// Package config provides hierarchical configuration management for versionlog using koanf.
// Configuration is loaded with priority: environment variables > project config (.versionlog/config.yml)
// > user config (~/.config/versionlog/config.yml) > defaults. The result is converted into an
// explicit ledger.Config; nothing downstream reads settings on its own.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/versionlog/internal/branch"
	"github.com/ariel-frischer/versionlog/internal/ledger"
	"github.com/ariel-frischer/versionlog/internal/versioning"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "VERSIONLOG_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the versionlog configuration
type Configuration struct {
	// Root is the directory holding the change records.
	Root string `koanf:"root" validate:"required"`
	// Baseline is the version the fold starts from, e.g. "1.4.0".
	Baseline string `koanf:"baseline" validate:"semver_triple"`
	// BranchPolicy allows one record per committed branch. Disable it to
	// use versionlog outside a git checkout.
	BranchPolicy bool `koanf:"branch_policy"`
	// BranchMode selects the branch identity: "commit" (hash HEAD points to)
	// or "name" (short branch name).
	BranchMode string `koanf:"branch_mode" validate:"oneof=commit name"`
	// TemplatePath is a JSON object merged into every new record.
	// Defaults to <root>/stubs/template.json.
	TemplatePath string `koanf:"template_path" validate:"omitempty,json_file"`
	// Template holds inline template fields; they overlay TemplatePath.
	Template map[string]any `koanf:"template"`
	Debug    bool           `koanf:"debug"`

	// Parsed by finalizeConfig.
	baseline versioning.Triple
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .versionlog/config.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: XDG config dir)
	UserConfigPath string
	// SkipUserConfig ignores the user config entirely
	SkipUserConfig bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	if !opts.SkipUserConfig {
		if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
			return nil, err
		}
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// Sources reports which layer each known key was last set by. Keys not
// listed are at their defaults.
func Sources(opts LoadOptions) (map[string]ConfigSource, error) {
	sources := make(map[string]ConfigSource, len(KnownKeys))
	for key := range KnownKeys {
		sources[key] = SourceDefault
	}

	mark := func(k *koanf.Koanf, source ConfigSource) {
		for key := range KnownKeys {
			if k.Exists(key) {
				sources[key] = source
			}
		}
	}

	if !opts.SkipUserConfig {
		path := opts.UserConfigPath
		if path == "" {
			path, _ = UserConfigPath()
		}
		if fileExists(path) {
			k := koanf.New(".")
			if err := loadYAMLConfig(k, path, "user"); err != nil {
				return nil, err
			}
			mark(k, SourceUser)
		}
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if fileExists(projectPath) {
		k := koanf.New(".")
		if err := loadYAMLConfig(k, projectPath, "project"); err != nil {
			return nil, err
		}
		mark(k, SourceProject)
	}

	k := koanf.New(".")
	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}
	mark(k, SourceEnv)
	return sources, nil
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when it exists.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project-level YAML config when it exists.
// Supports custom path override (for testing).
func loadProjectConfig(k *koanf.Koanf, customPath string) error {
	path := ProjectConfigPath()
	if customPath != "" {
		path = customPath
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "project"); err != nil {
		return fmt.Errorf("loading project YAML config: %w", err)
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	data, err := file.Provider(path).ReadBytes()
	if err != nil {
		return &ValidationError{FilePath: path, Message: err.Error()}
	}
	if err := ValidateYAMLSyntax(data, path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.BranchMode = strings.ToLower(strings.TrimSpace(cfg.BranchMode))
	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Already checked by the semver_triple tag.
	baseline, err := versioning.ParseTriple(cfg.Baseline)
	if err != nil {
		return nil, fmt.Errorf("parsing baseline: %w", err)
	}
	cfg.baseline = baseline

	cfg.Root = expandHomePath(cfg.Root)
	if cfg.TemplatePath == "" {
		cfg.TemplatePath = DefaultTemplatePath(cfg.Root)
	}
	cfg.TemplatePath = expandHomePath(cfg.TemplatePath)

	return &cfg, nil
}

// BaselineTriple returns the parsed baseline version.
func (c *Configuration) BaselineTriple() versioning.Triple {
	return c.baseline
}

// LoadTemplate returns the record template: the JSON object at
// TemplatePath (if present) overlaid with the inline template map.
func (c *Configuration) LoadTemplate() (map[string]any, error) {
	template := make(map[string]any)

	data, err := file.Provider(c.TemplatePath).ReadBytes()
	switch {
	case err == nil:
		parsed, err := json.Parser().Unmarshal(data)
		if err != nil {
			return nil, &ValidationError{FilePath: c.TemplatePath, Message: "invalid JSON template: " + err.Error()}
		}
		maps.Copy(template, parsed)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading template %s: %w", c.TemplatePath, err)
	}

	maps.Copy(template, c.Template)
	return template, nil
}

// ToLedger builds the explicit engine configuration.
func (c *Configuration) ToLedger() (ledger.Config, error) {
	template, err := c.LoadTemplate()
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		Root:         c.Root,
		Baseline:     c.baseline,
		BranchPolicy: c.BranchPolicy,
		Template:     template,
	}, nil
}

// Resolver returns the git branch resolver configured by BranchMode,
// searching for the repository from dir.
func (c *Configuration) Resolver(dir string, logger *zap.Logger) (branch.Resolver, error) {
	mode, err := branch.ParseMode(c.BranchMode)
	if err != nil {
		return nil, err
	}
	return branch.NewGitResolver(dir, mode, logger), nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: VERSIONLOG_BRANCH_POLICY -> branch_policy
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
