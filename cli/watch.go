package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yamlmedic/yamlmedic/engine/audit"
	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/engine/pipeline"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

// WatchCmd builds the watch command: monitor a directory and re-audit
// manifests as they change. Watching never writes files.
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and re-audit manifests on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0])
		},
	}
	cmd.Flags().String("ext", ".yaml", "manifest extension to watch for")
	cmd.Flags().Int("max-size-mb", 0, "input size ceiling in MiB (0 uses the configured default)")
	return cmd
}

func runWatch(cmd *cobra.Command, dir string) error {
	cfg, err := setupCommand(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("max-size-mb"); v > 0 {
		cfg.MaxSizeMB = v
	}
	ext, _ := cmd.Flags().GetString("ext")

	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("cannot resolve path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("watch target %q is not a directory", abs)
	}

	engine, err := audit.New(abs, pipeline.Config{MaxSizeMB: cfg.MaxSizeMB, Workers: cfg.Workers})
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the whole subtree: fsnotify watches are not recursive.
	err = filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %q: %w", abs, err)
	}

	log := logger.FromContext(cmd.Context())
	log.Info("watching for manifest changes", "path", abs, "ext", ext)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					watcher.Add(event.Name) //nolint:errcheck // best-effort subtree expansion
				}
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ext) {
				continue
			}
			rel, err := filepath.Rel(abs, event.Name)
			if err != nil {
				continue
			}
			result := engine.AuditAndHealFile(ctx, rel, audit.Options{DryRun: true})
			reportChange(log, result)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "error", err)
		}
	}
}

func reportChange(log logger.Logger, result *core.Result) {
	switch {
	case result.Success:
		log.Info("manifest healthy",
			"path", result.FilePath,
			"status", result.Status,
			"lines_changed", result.Report.LinesChanged,
		)
	case result.PartialHeal:
		log.Warn("manifest partially repairable",
			"path", result.FilePath,
			"status", result.Status,
		)
	default:
		log.Error("manifest broken",
			"path", result.FilePath,
			"status", result.Status,
			"error", result.Report.Error,
		)
	}
}
