package config

import "path/filepath"

// DefaultRoot is the record directory used when none is configured.
const DefaultRoot = "./version"

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# versionlog configuration
# See 'versionlog config keys' for all options

root: ./version                       # Directory holding one JSON file per change record
baseline: 0.0.0                       # Version the history is folded onto
branch_policy: true                   # One record per committed git branch
branch_mode: commit                   # Branch identity: commit | name
template_path: ""                     # Record template JSON (default: <root>/stubs/template.json)
debug: false                          # Debug logging

# Inline template fields merged into every new record (overlay template_path)
# template:
#   ticket: ""
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"root":          DefaultRoot,
		"baseline":      "0.0.0",
		"branch_policy": true,
		"branch_mode":   "commit",
		"template_path": "",
		"debug":         false,
	}
}

// DefaultTemplatePath returns the record template location under root.
func DefaultTemplatePath(root string) string {
	return filepath.Join(root, "stubs", "template.json")
}
