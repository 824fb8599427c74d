// Package audit wraps the healing pipeline with workspace file management:
// pre-flight checks, backup creation, atomic writes and recursive scans.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/engine/pipeline"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

// File-level statuses reported before the pipeline runs.
const (
	StatusFileNotFound      core.Status = "FILE_NOT_FOUND"
	StatusNotAFile          core.Status = "NOT_A_FILE"
	StatusPermissionDenied  core.Status = "PERMISSION_DENIED"
	StatusNoWritePermission core.Status = "NO_WRITE_PERMISSION"
	StatusScanError         core.Status = "SCAN_ERROR"
)

const (
	backupSuffix = ".yamlmedic.backup"
	tempSuffix   = ".yamlmedic.tmp"
)

// Options controls a single audit-and-heal run.
type Options struct {
	// DryRun leaves all files untouched.
	DryRun bool
	// ForceWrite writes best-effort content even when only a partial heal
	// was achieved.
	ForceWrite bool
}

// Engine validates, heals, backs up and writes manifests inside one
// workspace directory.
type Engine struct {
	fs        afero.Fs
	workspace string
	pipeline  *pipeline.Pipeline
}

// New creates an Engine on the OS filesystem.
func New(workspace string, cfg pipeline.Config) (*Engine, error) {
	return NewWithFs(afero.NewOsFs(), workspace, cfg)
}

// NewWithFs creates an Engine on an explicit filesystem, ensuring the
// workspace directory exists.
func NewWithFs(fs afero.Fs, workspace string, cfg pipeline.Config) (*Engine, error) {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, core.NewErrorf(core.ErrCodeInvalidWorkspace, "cannot resolve workspace %q: %s", workspace, err)
	}
	if err := fs.MkdirAll(abs, 0o755); err != nil {
		return nil, core.NewErrorf(core.ErrCodeInvalidWorkspace, "cannot create workspace %q: %s", abs, err)
	}
	return &Engine{
		fs:        fs,
		workspace: abs,
		pipeline:  pipeline.NewWithFs(cfg, fs),
	}, nil
}

// Workspace returns the engine's absolute workspace root.
func (e *Engine) Workspace() string {
	return e.workspace
}

// AuditAndHealFile validates, heals, backs up and writes a single file
// identified by its workspace-relative path.
func (e *Engine) AuditAndHealFile(ctx context.Context, relPath string, opts Options) *core.Result {
	full := filepath.Join(e.workspace, relPath)

	info, err := e.fs.Stat(full)
	if err != nil {
		return e.fileError(relPath, StatusFileNotFound, fmt.Sprintf("file not found: %s", full))
	}
	if info.IsDir() {
		return e.fileError(relPath, StatusNotAFile, fmt.Sprintf("not a regular file: %s", full))
	}
	rf, err := e.fs.Open(full)
	if err != nil {
		return e.fileError(relPath, StatusPermissionDenied, fmt.Sprintf("read access denied: %s", full))
	}
	rf.Close()
	if !opts.DryRun {
		wf, err := e.fs.OpenFile(full, os.O_WRONLY, 0)
		if err != nil {
			return e.fileError(relPath, StatusNoWritePermission, "write access denied")
		}
		wf.Close()
	}

	result := e.pipeline.HealFile(ctx, full)
	result.FilePath = relPath
	result.FileSizeBytes = info.Size()

	shouldWrite := !opts.DryRun && (result.Success || (result.PartialHeal && opts.ForceWrite))
	if shouldWrite {
		e.backupAndWrite(full, result)
	}
	return result
}

// backupAndWrite creates a collision-free sibling backup, then writes the
// healed content atomically. A failed backup only warns; a failed write
// downgrades the result to failure.
func (e *Engine) backupAndWrite(full string, result *core.Result) {
	backup := e.uniqueBackupPath(full)
	if err := e.copyFile(full, backup); err != nil {
		result.BackupWarning = fmt.Sprintf("backup failed: %s", err)
	} else if rel, err := filepath.Rel(e.workspace, backup); err == nil {
		result.BackupCreated = rel
	} else {
		result.BackupCreated = backup
	}
	if err := e.atomicWrite(full, result.Content); err != nil {
		result.WriteError = err.Error()
		result.Success = false
		return
	}
	result.Written = true
}

// uniqueBackupPath produces a collision-free sibling path:
// name.yamlmedic.backup, name-1.yamlmedic.backup, and so on.
func (e *Engine) uniqueBackupPath(target string) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	candidate := filepath.Join(dir, stem+backupSuffix)
	for counter := 1; ; counter++ {
		if exists, _ := afero.Exists(e.fs, candidate); !exists {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, counter, backupSuffix))
	}
}

// atomicWrite writes content to a temp sibling and renames it into place,
// so the target is never observed partially written. The temp file is
// removed on every failure path.
func (e *Engine) atomicWrite(target, content string) error {
	temp := target + tempSuffix
	if err := afero.WriteFile(e.fs, temp, []byte(content), 0o644); err != nil {
		e.fs.Remove(temp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("atomic write failed: %w", err)
	}
	if err := e.fs.Rename(temp, target); err != nil {
		e.fs.Remove(temp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("atomic write failed: %w", err)
	}
	return nil
}

func (e *Engine) copyFile(src, dst string) error {
	data, err := afero.ReadFile(e.fs, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(e.fs, dst, data, 0o644)
}

// CleanupBackups removes backup files older than maxAge and returns how
// many were deleted.
func (e *Engine) CleanupBackups(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	count := 0
	err := afero.Walk(e.fs, e.workspace, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, backupSuffix) && info.ModTime().Before(cutoff) {
			if rmErr := e.fs.Remove(path); rmErr == nil {
				count++
			}
		}
		return nil
	})
	return count, err
}

// AuditSummary aggregates a scan's reports for presentation.
type AuditSummary struct {
	TotalFiles          int     `json:"total_files"`
	SuccessRate         float64 `json:"success_rate"`
	Successful          int     `json:"successful"`
	Partial             int     `json:"partial_heal"`
	FailedLogic         int     `json:"failed_logic"`
	SystemErrors        int     `json:"system_errors"`
	BackupsCreated      int     `json:"backups_created"`
	WrittenToDisk       int     `json:"written_to_disk"`
	RecommendForceWrite bool    `json:"recommend_force_write"`
	Timestamp           string  `json:"summary_timestamp"`
}

// GenerateSummary computes success rates over a batch of audit reports and
// flags when a force-write retry is worth suggesting.
func GenerateSummary(reports []*core.Result) AuditSummary {
	summary := AuditSummary{Timestamp: time.Now().Format("2006-01-02 15:04:05")}
	if len(reports) == 0 {
		return summary
	}
	for _, r := range reports {
		if r.Success {
			summary.Successful++
		}
		if r.PartialHeal {
			summary.Partial++
		}
		if r.BackupCreated != "" {
			summary.BackupsCreated++
		}
		if r.Written {
			summary.WrittenToDisk++
		}
		switch r.Status {
		case StatusFileNotFound, StatusPermissionDenied, StatusNoWritePermission, StatusScanError:
			summary.SystemErrors++
		}
	}
	summary.TotalFiles = len(reports)
	summary.SuccessRate = float64(summary.Successful) / float64(summary.TotalFiles)
	summary.FailedLogic = summary.TotalFiles - summary.Successful - summary.Partial - summary.SystemErrors
	// Few partial heals (<10%) usually means a --force retry will finish
	// the job.
	summary.RecommendForceWrite = summary.Partial > 0 &&
		float64(summary.Partial) < float64(summary.TotalFiles)*0.10
	return summary
}

func (e *Engine) fileError(relPath string, status core.Status, errMsg string) *core.Result {
	logger.Debug("audit pre-flight rejection", "path", relPath, "status", status)
	return &core.Result{
		FilePath: relPath,
		Status:   status,
		Report: core.Report{
			Changes: []core.LineChange{},
			Error:   errMsg,
		},
		Success:     false,
		PartialHeal: false,
	}
}
