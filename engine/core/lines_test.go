package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripInlineComment(t *testing.T) {
	t.Parallel()

	t.Run("Should drop a trailing inline comment", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "key: value", StripInlineComment("key: value  # note"))
	})
	t.Run("Should keep a comment-only line detectable", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "# heading", StripInlineComment("# heading   "))
	})
	t.Run("Should not treat a hash without leading space as a comment", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "key: val#ue", StripInlineComment("key: val#ue"))
	})
	t.Run("Should trim trailing whitespace", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "key: value", StripInlineComment("key: value \t\r"))
	})
}

func TestIsProtectedStructure(t *testing.T) {
	t.Parallel()

	t.Run("Should protect directives, boundaries and scalars", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"%YAML 1.2",
			"%TAG ! tag:example.com,2024:",
			"---",
			"...",
			"| ",
			">-",
			"&anchor",
			"*alias",
			"  &defaults",
		} {
			assert.True(t, IsProtectedStructure(line), "line %q", line)
		}
	})
	t.Run("Should not protect ordinary mapping or sequence lines", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"key: value",
			"  - item",
			"spec:",
			"# comment",
		} {
			assert.False(t, IsProtectedStructure(line), "line %q", line)
		}
	})
}

func TestContainsAnchorOrAlias(t *testing.T) {
	t.Parallel()

	t.Run("Should catch anchor and alias tokens in value position", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"base: &defaults",
			"merged: *defaults",
			"&anchor:",
			"  - *item",
		} {
			assert.True(t, ContainsAnchorOrAlias(line), "line %q", line)
		}
	})
	t.Run("Should not match plain scalars", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"key: value",
			"glob: a*b",
			"expr: 2*3",
		} {
			assert.False(t, ContainsAnchorOrAlias(line), "line %q", line)
		}
	})
}

func TestIsMappingKey(t *testing.T) {
	t.Parallel()

	t.Run("Should match a key opening a nested block", func(t *testing.T) {
		t.Parallel()
		assert.True(t, IsMappingKey("spec:"))
		assert.True(t, IsMappingKey("  metadata:"))
	})
	t.Run("Should not match key-value pairs or sequence items", func(t *testing.T) {
		t.Parallel()
		assert.False(t, IsMappingKey("key: value"))
		assert.False(t, IsMappingKey("- name:"))
		assert.False(t, IsMappingKey("  - item"))
	})
}

func TestIsBlockScalarHeader(t *testing.T) {
	t.Parallel()

	t.Run("Should match literal and folded headers with indicators", func(t *testing.T) {
		t.Parallel()
		for _, line := range []string{
			"data: |",
			"script: |-",
			"msg: >",
			"msg: >+",
			"conf: |2",
			"conf: |2-",
		} {
			assert.True(t, IsBlockScalarHeader(line), "line %q", line)
		}
	})
	t.Run("Should not match pipes inside values", func(t *testing.T) {
		t.Parallel()
		assert.False(t, IsBlockScalarHeader("cmd: a | b"))
		assert.False(t, IsBlockScalarHeader("key: value"))
	})
}

func TestIndentWidth(t *testing.T) {
	t.Parallel()

	t.Run("Should count leading spaces and tabs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, 0, IndentWidth("key:"))
		assert.Equal(t, 4, IndentWidth("    key:"))
		assert.Equal(t, 2, IndentWidth("\t\tkey:"))
	})
}
