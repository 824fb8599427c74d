package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("Should write structured text output", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf})
		l.Info("healed manifest", "status", "STRUCTURE_OK")
		out := buf.String()
		assert.Contains(t, out, "healed manifest")
		assert.Contains(t, out, "STRUCTURE_OK")
	})
	t.Run("Should filter below the configured level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		l.Info("quiet")
		l.Warn("loud")
		out := buf.String()
		assert.NotContains(t, out, "quiet")
		assert.Contains(t, out, "loud")
	})
	t.Run("Should emit JSON when configured", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf, JSON: true})
		l.Info("scan complete", "files", 3)
		line := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasPrefix(line, "{"), "expected JSON, got %q", line)
		assert.Contains(t, line, `"scan complete"`)
	})
	t.Run("Should carry key values through With", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf}).With("component", "audit")
		l.Info("ready")
		assert.Contains(t, buf.String(), "audit")
	})
	t.Run("Should fall back to defaults for a nil config", func(t *testing.T) {
		t.Parallel()
		assert.NotNil(t, NewLogger(nil))
	})
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("Should return the logger stored in the context", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DebugLevel, Output: &buf})
		ctx := WithContext(context.Background(), l)
		FromContext(ctx).Debug("from context")
		assert.Contains(t, buf.String(), "from context")
	})
	t.Run("Should fall back to the default for a bare context", func(t *testing.T) {
		t.Parallel()
		require.NotNil(t, FromContext(context.Background()))
	})
	t.Run("Should tolerate a nil context", func(t *testing.T) {
		t.Parallel()
		require.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil fallback is the point
	})
}
