package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamlmedic/yamlmedic/engine/core"
)

func TestRootCmd(t *testing.T) {
	t.Parallel()

	t.Run("Should register the heal and watch commands", func(t *testing.T) {
		t.Parallel()
		root := RootCmd()
		names := make([]string, 0)
		for _, c := range root.Commands() {
			names = append(names, c.Name())
		}
		assert.Contains(t, names, "heal")
		assert.Contains(t, names, "watch")
	})
	t.Run("Should expose the shared logging flags", func(t *testing.T) {
		t.Parallel()
		root := RootCmd()
		for _, name := range []string{"log-level", "log-json", "log-source"} {
			assert.NotNil(t, root.PersistentFlags().Lookup(name), "flag %s", name)
		}
	})
}

func TestHealCmd(t *testing.T) {
	t.Parallel()

	t.Run("Should default to a read only dry run", func(t *testing.T) {
		t.Parallel()
		cmd := HealCmd()
		fix, err := cmd.Flags().GetBool("fix")
		require.NoError(t, err)
		assert.False(t, fix)
		force, err := cmd.Flags().GetBool("force")
		require.NoError(t, err)
		assert.False(t, force)
	})
	t.Run("Should default to yaml manifests at depth ten", func(t *testing.T) {
		t.Parallel()
		cmd := HealCmd()
		ext, err := cmd.Flags().GetString("ext")
		require.NoError(t, err)
		assert.Equal(t, ".yaml", ext)
		depth, err := cmd.Flags().GetInt("depth")
		require.NoError(t, err)
		assert.Equal(t, 10, depth)
	})
	t.Run("Should require exactly one path argument", func(t *testing.T) {
		t.Parallel()
		cmd := HealCmd()
		assert.Error(t, cmd.Args(cmd, []string{}))
		assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
		assert.NoError(t, cmd.Args(cmd, []string{"a"}))
	})
}

func TestModeLabel(t *testing.T) {
	t.Parallel()

	t.Run("Should describe both run modes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "fix (with backup)", modeLabel(true))
		assert.Equal(t, "dry-run (read-only)", modeLabel(false))
	})
}

func TestResultLabel(t *testing.T) {
	t.Parallel()

	t.Run("Should label each outcome bucket", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "healed", resultLabel(&core.Result{Success: true}))
		assert.Equal(t, "partial", resultLabel(&core.Result{PartialHeal: true}))
		assert.Equal(t, "failed", resultLabel(&core.Result{}))
	})
}
