package audit

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

// ProgressFunc receives (processed, total) after each file in a scan.
type ProgressFunc func(processed, total int)

// ScanOptions controls a recursive workspace scan.
type ScanOptions struct {
	// Ext is the manifest extension to match, e.g. ".yaml". Upper and
	// lower case variants are both matched.
	Ext string
	// MaxDepth limits how many path segments below the workspace are
	// visited.
	MaxDepth int
	DryRun   bool
	// ForceWrite writes best-effort content on partial heals.
	ForceWrite bool
	Progress   ProgressFunc
}

// DefaultScanOptions matches the conventional manifest layout.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{Ext: ".yaml", MaxDepth: 10, DryRun: true}
}

// ScanDirectory recursively discovers manifests under the workspace and
// runs each through AuditAndHealFile. One file's failure never aborts the
// scan; a canceled context stops it between files.
func (e *Engine) ScanDirectory(ctx context.Context, opts ScanOptions) []*core.Result {
	if opts.Ext == "" {
		opts.Ext = ".yaml"
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 10
	}
	files := e.discoverFiles(opts)
	results := make([]*core.Result, 0, len(files))
	for i, rel := range files {
		if ctx.Err() != nil {
			break
		}
		results = append(results, e.AuditAndHealFile(ctx, rel, Options{
			DryRun:     opts.DryRun,
			ForceWrite: opts.ForceWrite,
		}))
		if opts.Progress != nil {
			opts.Progress(i+1, len(files))
		}
	}
	return results
}

// discoverFiles globs the workspace for matching manifests, skipping
// symlinks and entries deeper than MaxDepth. Results are sorted and
// workspace-relative.
func (e *Engine) discoverFiles(opts ScanOptions) []string {
	scoped := afero.NewBasePathFs(e.fs, e.workspace)
	iofs := afero.NewIOFS(scoped)
	seen := make(map[string]bool)
	patterns := []string{
		"**/*" + strings.ToLower(opts.Ext),
		"**/*" + strings.ToUpper(opts.Ext),
	}
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(iofs, pattern)
		if err != nil {
			logger.Warn("invalid scan pattern", "pattern", pattern, "error", err)
			continue
		}
		for _, match := range matches {
			if e.skipEntry(scoped, match, opts.MaxDepth) {
				continue
			}
			seen[filepath.FromSlash(match)] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// skipEntry filters out directories, symlinks and matches beyond the depth
// limit. rel is slash-separated, as returned by the glob.
func (e *Engine) skipEntry(scoped afero.Fs, rel string, maxDepth int) bool {
	if strings.Count(rel, "/")+1 > maxDepth {
		return true
	}
	if lstater, ok := scoped.(afero.Lstater); ok {
		if info, lstatCalled, err := lstater.LstatIfPossible(rel); err == nil && lstatCalled {
			if info.Mode()&os.ModeSymlink != 0 {
				return true
			}
		}
	}
	info, err := scoped.Stat(rel)
	if err != nil || info.IsDir() {
		return true
	}
	return false
}
