package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	PrintRows(&buf, []Row{
		{Key: "root", Value: "./version", Note: "(default)"},
		{Key: "branch_mode", Value: "name"},
	})

	expected := "  root         ./version  (default)\n" +
		"  branch_mode  name\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrintVersion(t *testing.T) {
	tests := map[string]struct {
		plain bool
		want  string
	}{
		"plain prints bare version": {plain: true, want: "1.2.3\n"},
		"labelled":                  {plain: false, want: "Current version: 1.2.3\n"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintVersion(&buf, "Current version:", "1.2.3", tt.plain)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrintSuccess(t *testing.T) {
	var buf bytes.Buffer
	PrintSuccess(&buf, "Created version/a.json")
	assert.Equal(t, "✓ Created version/a.json\n", buf.String())
}

func TestGetTerminalWidth(t *testing.T) {
	assert.Greater(t, GetTerminalWidth(), 0)
}
