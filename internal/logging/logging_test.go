package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]struct {
		debug     bool
		wantDebug bool
	}{
		"default hides debug": {},
		"debug shows debug":   {debug: true, wantDebug: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.debug, &buf)

			logger.Debug("debug line")
			logger.Warn("warn line")
			_ = logger.Sync()

			assert.Contains(t, buf.String(), "warn line")
			if tt.wantDebug {
				assert.Contains(t, buf.String(), "debug line")
			} else {
				assert.NotContains(t, buf.String(), "debug line")
			}
		})
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	logger := New(false, &bytes.Buffer{})
	assert.Same(t, logger, OrNop(logger))
}
