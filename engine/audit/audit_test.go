package audit

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/engine/pipeline"
)

func newTestEngine(t *testing.T) (*Engine, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	engine, err := NewWithFs(fs, "/workspace", pipeline.Config{})
	require.NoError(t, err)
	return engine, fs
}

func TestEngine_AuditAndHealFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Should report a missing file", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t)
		r := engine.AuditAndHealFile(ctx, "ghost.yaml", Options{DryRun: true})
		assert.Equal(t, StatusFileNotFound, r.Status)
		assert.False(t, r.Success)
	})
	t.Run("Should report a directory as not a file", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		require.NoError(t, fs.MkdirAll("/workspace/dir.yaml", 0o755))
		r := engine.AuditAndHealFile(ctx, "dir.yaml", Options{DryRun: true})
		assert.Equal(t, StatusNotAFile, r.Status)
	})
	t.Run("Should leave the file untouched in dry run", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		original := "metadata:\n\tname: web\n"
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yaml", []byte(original), 0o644))
		r := engine.AuditAndHealFile(ctx, "m.yaml", Options{DryRun: true})
		assert.True(t, r.Success)
		assert.False(t, r.Written)
		assert.Empty(t, r.BackupCreated)
		data, err := afero.ReadFile(fs, "/workspace/m.yaml")
		require.NoError(t, err)
		assert.Equal(t, original, string(data))
	})
	t.Run("Should back up and write the healed content", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		original := "metadata:\n\tname: web\n"
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yaml", []byte(original), 0o644))
		r := engine.AuditAndHealFile(ctx, "m.yaml", Options{})
		require.True(t, r.Success)
		assert.True(t, r.Written)
		assert.Equal(t, "m.yamlmedic.backup", r.BackupCreated)

		backup, err := afero.ReadFile(fs, "/workspace/m.yamlmedic.backup")
		require.NoError(t, err)
		assert.Equal(t, original, string(backup))

		healed, err := afero.ReadFile(fs, "/workspace/m.yaml")
		require.NoError(t, err)
		assert.NotContains(t, string(healed), "\t")
		assert.Contains(t, string(healed), "name: web")
	})
	t.Run("Should pick a collision free backup name", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yaml", []byte("a:\n\tb: 1\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yamlmedic.backup", []byte("old"), 0o644))
		r := engine.AuditAndHealFile(ctx, "m.yaml", Options{})
		require.True(t, r.Success)
		assert.Equal(t, "m-1.yamlmedic.backup", r.BackupCreated)
		exists, _ := afero.Exists(fs, "/workspace/m-1.yamlmedic.backup")
		assert.True(t, exists)
	})
	t.Run("Should not write a failed heal", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		broken := "key: \"unterminated\n"
		require.NoError(t, afero.WriteFile(fs, "/workspace/bad.yaml", []byte(broken), 0o644))
		r := engine.AuditAndHealFile(ctx, "bad.yaml", Options{})
		assert.False(t, r.Success)
		assert.False(t, r.Written)
		data, err := afero.ReadFile(fs, "/workspace/bad.yaml")
		require.NoError(t, err)
		assert.Equal(t, broken, string(data))
	})
	t.Run("Should report file size and relative path", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yaml", []byte("a: 1\n"), 0o644))
		r := engine.AuditAndHealFile(ctx, "m.yaml", Options{DryRun: true})
		assert.Equal(t, "m.yaml", r.FilePath)
		assert.Equal(t, int64(5), r.FileSizeBytes)
	})
}

func TestEngine_CleanupBackups(t *testing.T) {
	t.Parallel()

	t.Run("Should remove stale backups and keep manifests", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yaml", []byte("a: 1\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yamlmedic.backup", []byte("a: 1\n"), 0o644))
		removed, err := engine.CleanupBackups(-time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		exists, _ := afero.Exists(fs, "/workspace/m.yaml")
		assert.True(t, exists)
		exists, _ = afero.Exists(fs, "/workspace/m.yamlmedic.backup")
		assert.False(t, exists)
	})
	t.Run("Should keep backups newer than the age limit", func(t *testing.T) {
		t.Parallel()
		engine, fs := newTestEngine(t)
		require.NoError(t, afero.WriteFile(fs, "/workspace/m.yamlmedic.backup", []byte("a: 1\n"), 0o644))
		removed, err := engine.CleanupBackups(24 * time.Hour)
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

func TestGenerateSummary(t *testing.T) {
	t.Parallel()

	t.Run("Should aggregate buckets and counters", func(t *testing.T) {
		t.Parallel()
		results := []*core.Result{
			{Success: true, BackupCreated: "a.yamlmedic.backup", Written: true},
			{Success: true},
			{PartialHeal: true},
			{Status: StatusFileNotFound},
			{},
		}
		s := GenerateSummary(results)
		assert.Equal(t, 5, s.TotalFiles)
		assert.Equal(t, 2, s.Successful)
		assert.Equal(t, 1, s.Partial)
		assert.Equal(t, 1, s.SystemErrors)
		assert.Equal(t, 1, s.FailedLogic)
		assert.Equal(t, 1, s.BackupsCreated)
		assert.Equal(t, 1, s.WrittenToDisk)
		assert.InDelta(t, 0.4, s.SuccessRate, 1e-9)
	})
	t.Run("Should recommend force write for rare partial heals", func(t *testing.T) {
		t.Parallel()
		results := make([]*core.Result, 0, 20)
		for i := 0; i < 19; i++ {
			results = append(results, &core.Result{Success: true})
		}
		results = append(results, &core.Result{PartialHeal: true})
		s := GenerateSummary(results)
		assert.True(t, s.RecommendForceWrite)
	})
	t.Run("Should not recommend force write when partial heals dominate", func(t *testing.T) {
		t.Parallel()
		results := []*core.Result{
			{Success: true},
			{PartialHeal: true},
			{PartialHeal: true},
			{Success: true},
		}
		s := GenerateSummary(results)
		assert.False(t, s.RecommendForceWrite)
	})
	t.Run("Should handle an empty batch", func(t *testing.T) {
		t.Parallel()
		s := GenerateSummary(nil)
		assert.Zero(t, s.TotalFiles)
		assert.Zero(t, s.SuccessRate)
	})
}
