package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yamlmedic/yamlmedic/engine/audit"
	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/engine/pipeline"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

// HealCmd builds the heal command: audit a file or directory tree and
// optionally apply the repairs.
func HealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heal <path>",
		Short: "Audit and repair a manifest file or directory tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeal(cmd, args[0])
		},
	}
	cmd.Flags().Bool("fix", false, "apply fixes to files (a backup is created first)")
	cmd.Flags().Bool("force", false, "write best-effort content even on partial heals")
	cmd.Flags().String("ext", ".yaml", "manifest extension to scan for")
	cmd.Flags().Int("depth", 10, "maximum directory depth")
	cmd.Flags().Int("max-size-mb", 0, "input size ceiling in MiB (0 uses the configured default)")
	cmd.Flags().Int("workers", 0, "batch parallelism (0 uses the configured default)")
	cmd.Flags().Bool("json", false, "emit results as JSON")
	return cmd
}

func runHeal(cmd *cobra.Command, path string) error {
	cfg, err := setupCommand(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-size-mb"); v > 0 {
		cfg.MaxSizeMB = v
	}
	if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	fix, _ := cmd.Flags().GetBool("fix")
	force, _ := cmd.Flags().GetBool("force")
	ext, _ := cmd.Flags().GetString("ext")
	depth, _ := cmd.Flags().GetInt("depth")
	jsonOut, _ := cmd.Flags().GetBool("json")

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("path %q does not exist", abs)
	}

	// The processing-time budget is advisory: it cancels between files, never
	// inside a document's repair loop.
	ctx := cmd.Context()
	if cfg.TimeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutS)*time.Second)
		defer cancel()
	}

	pipeCfg := pipeline.Config{MaxSizeMB: cfg.MaxSizeMB, Workers: cfg.Workers}
	var results []*core.Result
	if info.IsDir() {
		engine, err := audit.New(abs, pipeCfg)
		if err != nil {
			return err
		}
		logger.Info("scanning workspace",
			"path", abs,
			"ext", ext,
			"mode", modeLabel(fix),
		)
		results = engine.ScanDirectory(ctx, audit.ScanOptions{
			Ext:        ext,
			MaxDepth:   depth,
			DryRun:     !fix,
			ForceWrite: force,
			Progress: func(processed, total int) {
				logger.Debug("processed manifest", "done", processed, "total", total)
			},
		})
		if len(results) == 0 {
			logger.Warn("no manifest files found", "ext", ext, "path", abs)
			return nil
		}
	} else {
		engine, err := audit.New(filepath.Dir(abs), pipeCfg)
		if err != nil {
			return err
		}
		results = []*core.Result{
			engine.AuditAndHealFile(ctx, filepath.Base(abs), audit.Options{
				DryRun:     !fix,
				ForceWrite: force,
			}),
		}
	}

	if err := renderResults(cmd.OutOrStdout(), results, jsonOut); err != nil {
		return err
	}
	renderSummary(cmd.OutOrStdout(), audit.GenerateSummary(results), fix, path)
	return nil
}

func modeLabel(fix bool) string {
	if fix {
		return "fix (with backup)"
	}
	return "dry-run (read-only)"
}
