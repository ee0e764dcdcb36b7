package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ariel-frischer/versionlog/internal/branch"
	"github.com/ariel-frischer/versionlog/internal/versioning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadIsolated(t *testing.T, projectYAML string) (*Configuration, error) {
	t.Helper()
	dir := t.TempDir()
	opts := LoadOptions{
		ProjectConfigPath: filepath.Join(dir, ".versionlog", "config.yml"),
		SkipUserConfig:    true,
	}
	if projectYAML != "" {
		writeFile(t, opts.ProjectConfigPath, projectYAML)
	}
	return LoadWithOptions(opts)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadIsolated(t, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, versioning.Triple{}, cfg.BaselineTriple())
	assert.True(t, cfg.BranchPolicy)
	assert.Equal(t, "commit", cfg.BranchMode)
	assert.Equal(t, DefaultTemplatePath(DefaultRoot), cfg.TemplatePath)
	assert.False(t, cfg.Debug)
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	userPath := writeFile(t, filepath.Join(dir, "user", "config.yml"), "baseline: 1.0.0\nroot: ./user-root\n")
	projectPath := writeFile(t, filepath.Join(dir, "project", "config.yml"), "baseline: 2.3.4\nbranch_mode: name\n")
	t.Setenv("VERSIONLOG_BRANCH_POLICY", "false")

	cfg, err := LoadWithOptions(LoadOptions{ProjectConfigPath: projectPath, UserConfigPath: userPath})
	require.NoError(t, err)

	assert.Equal(t, "./user-root", cfg.Root)
	assert.Equal(t, versioning.Triple{Major: 2, Minor: 3, Patch: 4}, cfg.BaselineTriple())
	assert.Equal(t, "name", cfg.BranchMode)
	assert.False(t, cfg.BranchPolicy)

	sources, err := Sources(LoadOptions{ProjectConfigPath: projectPath, UserConfigPath: userPath})
	require.NoError(t, err)
	assert.Equal(t, SourceUser, sources["root"])
	assert.Equal(t, SourceProject, sources["baseline"])
	assert.Equal(t, SourceEnv, sources["branch_policy"])
	assert.Equal(t, SourceDefault, sources["debug"])
}

func TestLoad_DebugEnv(t *testing.T) {
	tests := map[string]struct {
		value string
		want  bool
	}{
		"true":  {value: "true", want: true},
		"one":   {value: "1", want: true},
		"false": {value: "false", want: false},
		"zero":  {value: "0", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("VERSIONLOG_DEBUG", tt.value)
			cfg, err := loadIsolated(t, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Debug)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]struct {
		yaml    string
		wantErr string
	}{
		"bad branch mode": {
			yaml:    "branch_mode: tag\n",
			wantErr: "branch_mode",
		},
		"bad baseline": {
			yaml:    "baseline: not-a-version\n",
			wantErr: "baseline",
		},
		"prerelease baseline": {
			yaml:    "baseline: 1.0.0-rc.1\n",
			wantErr: "pre-release",
		},
		"empty root": {
			yaml:    "root: \"\"\n",
			wantErr: "root",
		},
		"template path not json": {
			yaml:    "template_path: ./stubs/template.yml\n",
			wantErr: "template_path",
		},
		"yaml syntax": {
			yaml:    "root: [unclosed\n",
			wantErr: "validating YAML syntax",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loadIsolated(t, tt.yaml)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ShorthandBaseline(t *testing.T) {
	cfg, err := loadIsolated(t, "baseline: v3.22\n")
	require.NoError(t, err)
	assert.Equal(t, "3.22.0", cfg.BaselineTriple().String())
}

func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, filepath.Join(dir, "stubs", "template.json"),
		`{"ticket": "", "reviewed": false, "meta.owner": "core"}`)

	cfg, err := loadIsolated(t, "template_path: "+templatePath+"\ntemplate:\n  ticket: REL-1\n  team: platform\n")
	require.NoError(t, err)

	template, err := cfg.LoadTemplate()
	require.NoError(t, err)
	assert.Equal(t, "REL-1", template["ticket"])
	assert.Equal(t, false, template["reviewed"])
	assert.Equal(t, "platform", template["team"])
	assert.Equal(t, "core", template["meta.owner"])
}

func TestLoadTemplate_Missing(t *testing.T) {
	cfg, err := loadIsolated(t, "root: "+filepath.Join(t.TempDir(), "version")+"\n")
	require.NoError(t, err)

	template, err := cfg.LoadTemplate()
	require.NoError(t, err)
	assert.Empty(t, template)
}

func TestLoadTemplate_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	templatePath := writeFile(t, filepath.Join(dir, "template.json"), `["not", "an", "object"]`)

	cfg, err := loadIsolated(t, "template_path: "+templatePath+"\n")
	require.NoError(t, err)

	_, err = cfg.LoadTemplate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, templatePath, verr.FilePath)
}

func TestToLedger(t *testing.T) {
	root := filepath.Join(t.TempDir(), "version")
	cfg, err := loadIsolated(t, "root: "+root+"\nbaseline: 3.22.4\nbranch_policy: false\ntemplate:\n  ticket: X\n")
	require.NoError(t, err)

	lc, err := cfg.ToLedger()
	require.NoError(t, err)
	assert.Equal(t, root, lc.Root)
	assert.Equal(t, versioning.Triple{Major: 3, Minor: 22, Patch: 4}, lc.Baseline)
	assert.False(t, lc.BranchPolicy)
	assert.Equal(t, map[string]any{"ticket": "X"}, lc.Template)
}

func TestResolver(t *testing.T) {
	cfg, err := loadIsolated(t, "branch_mode: name\n")
	require.NoError(t, err)

	resolver, err := cfg.Resolver(t.TempDir(), nil)
	require.NoError(t, err)
	git, ok := resolver.(*branch.GitResolver)
	require.True(t, ok)
	assert.Equal(t, branch.ModeName, git.Mode)
}

func TestEnvTransform(t *testing.T) {
	assert.Equal(t, "branch_policy", envTransform("VERSIONLOG_BRANCH_POLICY"))
	assert.Equal(t, "root", envTransform("VERSIONLOG_ROOT"))
}
