package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealError(t *testing.T) {
	t.Parallel()

	t.Run("Should carry code and message", func(t *testing.T) {
		t.Parallel()
		err := NewError(ErrCodeMalformedEncoding, "input is not valid UTF-8 text")
		assert.Equal(t, ErrCodeMalformedEncoding, err.Code)
		assert.Equal(t, "input is not valid UTF-8 text", err.Error())
	})
	t.Run("Should format the message", func(t *testing.T) {
		t.Parallel()
		err := NewErrorf(ErrCodeInvalidWorkspace, "cannot resolve workspace %q", "/tmp/x")
		assert.Contains(t, err.Error(), `"/tmp/x"`)
	})
	t.Run("Should unwrap through error chains", func(t *testing.T) {
		t.Parallel()
		inner := NewError(ErrCodeInvalidPattern, "bad glob")
		wrapped := fmt.Errorf("scan failed: %w", inner)
		var herr *HealError
		require.ErrorAs(t, wrapped, &herr)
		assert.Equal(t, ErrCodeInvalidPattern, herr.Code)
	})
}
