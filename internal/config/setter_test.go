package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		key     string
		value   string
		want    interface{}
		wantErr string
	}{
		"bool true":         {key: "branch_policy", value: "true", want: true},
		"bool uppercase":    {key: "debug", value: "FALSE", want: false},
		"bool invalid":      {key: "debug", value: "yes", wantErr: "invalid boolean"},
		"enum valid":        {key: "branch_mode", value: "name", want: "name"},
		"enum invalid":      {key: "branch_mode", value: "tag", wantErr: "valid options: commit, name"},
		"version normalize": {key: "baseline", value: "v1.2", want: "1.2.0"},
		"version invalid":   {key: "baseline", value: "1.x", wantErr: "invalid version"},
		"string":            {key: "root", value: "./releases", want: "./releases"},
		"unknown key":       {key: "nope", value: "x", wantErr: "unknown configuration key"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ValidateValue(tt.key, tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Parsed)
		})
	}
}

func TestSetValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initial string
		key     string
		value   string
		want    string
	}{
		"new file": {
			key:   "baseline",
			value: "1.0.0",
			want:  "baseline: 1.0.0\n",
		},
		"update existing": {
			initial: "root: ./version\nbaseline: 0.0.0\n",
			key:     "baseline",
			value:   "2.0",
			want:    "root: ./version\nbaseline: 2.0.0\n",
		},
		"append bool": {
			initial: "root: ./version\n",
			key:     "branch_policy",
			value:   "false",
			want:    "root: ./version\nbranch_policy: false\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), ".versionlog", "config.yml")
			if tt.initial != "" {
				writeFile(t, path, tt.initial)
			}

			_, err := SetValue(path, tt.key, tt.value)
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestSetValue_RejectsInvalid(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yml")

	_, err := SetValue(path, "branch_mode", "tag")
	require.Error(t, err)
	assert.NoFileExists(t, path)
}

func TestValidateYAMLSyntax(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data     string
		wantLine int
	}{
		"empty":        {data: ""},
		"whitespace":   {data: "  \n"},
		"valid":        {data: "root: ./version\nbaseline: 1.0.0\n"},
		"bad indent":   {data: "root: ok\n  bad: [\n", wantLine: 2},
		"unclosed seq": {data: "root: [unclosed\n", wantLine: 1},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := ValidateYAMLSyntax([]byte(tt.data), "config.yml")
			if tt.wantLine == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "config.yml", verr.FilePath)
			assert.Greater(t, verr.Line, 0)
			assert.NotContains(t, verr.Message, "yaml:")
		})
	}
}

func TestValidateConfigValues(t *testing.T) {
	t.Parallel()

	valid := func() Configuration {
		return Configuration{Root: "./version", Baseline: "1.2.3", BranchMode: "commit"}
	}

	tests := map[string]struct {
		mutate    func(*Configuration)
		wantField string
		wantMsg   string
	}{
		"valid": {mutate: func(*Configuration) {}},
		"shorthand baseline": {
			mutate: func(c *Configuration) { c.Baseline = "v2" },
		},
		"template path optional": {
			mutate: func(c *Configuration) { c.TemplatePath = "" },
		},
		"missing root": {
			mutate:    func(c *Configuration) { c.Root = "" },
			wantField: "root",
			wantMsg:   "is required",
		},
		"bad baseline": {
			mutate:    func(c *Configuration) { c.Baseline = "one.two" },
			wantField: "baseline",
			wantMsg:   "expected: X.Y.Z",
		},
		"prerelease baseline": {
			mutate:    func(c *Configuration) { c.Baseline = "1.0.0-rc.1" },
			wantField: "baseline",
			wantMsg:   "pre-release",
		},
		"bad branch mode": {
			mutate:    func(c *Configuration) { c.BranchMode = "tag" },
			wantField: "branch_mode",
			wantMsg:   "must be one of: commit, name",
		},
		"template not json": {
			mutate:    func(c *Configuration) { c.TemplatePath = "stubs/template.yml" },
			wantField: "template_path",
			wantMsg:   "must point to a .json file",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(&cfg)

			err := ValidateConfigValues(&cfg, "config.yml")
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Contains(t, verr.Message, tt.wantMsg)
		})
	}
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"baseline", "branch_mode", "branch_policy", "debug", "root", "template_path"}, SortedKeys())
}
