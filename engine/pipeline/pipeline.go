// Package pipeline orchestrates the healing flow: input guards, lexical
// normalization, structural repair, outcome classification and reporting.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/yamlmedic/yamlmedic/engine/core"
	"github.com/yamlmedic/yamlmedic/engine/lexer"
	"github.com/yamlmedic/yamlmedic/engine/structurer"
	"github.com/yamlmedic/yamlmedic/pkg/logger"
)

const (
	// DefaultMaxSizeMB is the input size ceiling guard.
	DefaultMaxSizeMB = 10
	// DefaultWorkers bounds batch parallelism.
	DefaultWorkers = 4

	// oversizePreview is how much of an oversized input is echoed back in
	// the result envelope.
	oversizePreview = 1000
	// faultPreview caps the diagnostic message attached to PIPELINE_ERROR.
	faultPreview = 100
)

// Config carries the pipeline guards and batch limits.
type Config struct {
	MaxSizeMB int
	Workers   int
}

// Pipeline is the healing orchestrator. It is stateless across invocations:
// every call is a pure function of its input and the fixed configuration,
// so one instance is safe for concurrent use.
type Pipeline struct {
	structurer *structurer.Structurer
	fs         afero.Fs
	maxBytes   int
	workers    int
}

// New creates a Pipeline reading files from the OS filesystem.
func New(cfg Config) *Pipeline {
	return NewWithFs(cfg, afero.NewOsFs())
}

// NewWithFs creates a Pipeline on an explicit filesystem. Tests and the
// audit engine share an in-memory filesystem through this entry.
func NewWithFs(cfg Config, fs afero.Fs) *Pipeline {
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Pipeline{
		structurer: structurer.New(structurer.DefaultConfig()),
		fs:         fs,
		maxBytes:   cfg.MaxSizeMB * 1024 * 1024,
		workers:    cfg.Workers,
	}
}

// Request identifies one healing input: inline content or a file source.
type Request struct {
	Content  *string
	FilePath string
}

// HealManifest heals inline manifest content.
func (p *Pipeline) HealManifest(ctx context.Context, content string) *core.Result {
	return p.Heal(ctx, Request{Content: &content})
}

// HealFile heals the manifest stored at path.
func (p *Pipeline) HealFile(ctx context.Context, path string) *core.Result {
	return p.Heal(ctx, Request{FilePath: path})
}

// Heal runs the guarded single-document healing flow and classifies the
// outcome. Guard rejections report Phase1Complete=false and never retry.
func (p *Pipeline) Heal(ctx context.Context, req Request) *core.Result {
	if req.Content == nil && req.FilePath == "" {
		return p.errorResult("", core.StatusMissingInput, "no content or file provided", "")
	}
	inputType := "string"
	var raw string
	if req.Content != nil {
		raw = *req.Content
	}
	if req.FilePath != "" {
		inputType = "file"
		data, err := afero.ReadFile(p.fs, req.FilePath)
		if err != nil {
			return p.errorResult("", core.StatusFileReadError, err.Error(), req.FilePath)
		}
		raw = strings.TrimPrefix(string(data), "\ufeff")
	}
	// Encoded byte size, not an in-memory estimate: multi-byte text would
	// otherwise be undercounted.
	size := len(raw)
	if size > p.maxBytes {
		res := p.errorResult(
			truncate(raw, oversizePreview),
			core.StatusFileTooLarge,
			fmt.Sprintf("input exceeds %dMB limit (%.1fMB)", p.maxBytes/(1024*1024), float64(size)/1024/1024),
			req.FilePath,
		)
		res.InputSizeBytes = size
		res.InputType = inputType
		return res
	}
	if strings.TrimSpace(raw) == "" {
		return p.errorResult("", core.StatusEmptyInput, "no input provided", req.FilePath)
	}
	result := p.healContent(ctx, raw)
	result.InputType = inputType
	result.InputSizeBytes = size
	if req.FilePath != "" {
		result.Report.FilePath = req.FilePath
	}
	return result
}

// healContent runs normalizer and repair engine over guarded content. Any
// internal fault is caught here and reported as PIPELINE_ERROR rather than
// propagated to the caller.
func (p *Pipeline) healContent(ctx context.Context, raw string) (result *core.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("healing pipeline fault", "panic", r)
			result = p.errorResult(raw, core.StatusPipelineError, truncate(fmt.Sprint(r), faultPreview), "")
		}
	}()

	lexed, err := lexer.Normalize(raw)
	if err != nil {
		return p.errorResult(raw, core.StatusPipelineError, truncate(err.Error(), faultPreview), "")
	}
	final, status := p.structurer.ProcessYAML(lexed)

	report := BuildReport(raw, final)
	success := status.IsSuccess()
	partial := status == core.StatusStructureFail &&
		final != structurer.NormalizeLineEndings(lexed) &&
		strings.TrimSpace(final) != ""
	logger.FromContext(ctx).Debug("healed manifest",
		"status", status,
		"lines_changed", report.LinesChanged,
	)
	return &core.Result{
		Content:        final,
		Status:         status,
		Report:         report,
		Success:        success,
		PartialHeal:    partial,
		Phase1Complete: true,
	}
}

// HealManifests batch-processes inline contents, filtering out blank
// entries. Documents are healed concurrently with bounded parallelism and
// results preserve input order; one document's failure never aborts its
// siblings.
func (p *Pipeline) HealManifests(ctx context.Context, contents []string) []*core.Result {
	valid := make([]string, 0, len(contents))
	for _, c := range contents {
		if strings.TrimSpace(c) != "" {
			valid = append(valid, c)
		}
	}
	results := make([]*core.Result, len(valid))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, content := range valid {
		g.Go(func() error {
			// The processing-time budget is advisory and enforced between
			// units of work, never inside the bounded repair loop.
			if err := ctx.Err(); err != nil {
				results[i] = p.errorResult(content, core.StatusPipelineError, truncate(err.Error(), faultPreview), "")
				return nil
			}
			results[i] = p.HealManifest(ctx, content)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
	return results
}

// HealFiles batch-processes file sources in order.
func (p *Pipeline) HealFiles(ctx context.Context, paths []string) []*core.Result {
	results := make([]*core.Result, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(p.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = p.errorResult("", core.StatusPipelineError, truncate(err.Error(), faultPreview), path)
				return nil
			}
			results[i] = p.HealFile(ctx, path)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
	return results
}

// BatchSuccessRate aggregates success metrics over a batch of results.
func BatchSuccessRate(results []*core.Result) core.Summary {
	if len(results) == 0 {
		return core.Summary{}
	}
	var successful, partial int
	for _, r := range results {
		if r.Success {
			successful++
		}
		if r.PartialHeal {
			partial++
		}
	}
	total := len(results)
	return core.Summary{
		SuccessRate: float64(successful) / float64(total),
		Total:       total,
		Successful:  successful,
		Partial:     partial,
		Failed:      total - successful - partial,
	}
}

// errorResult is the standardized envelope for every failure mode.
func (p *Pipeline) errorResult(content string, status core.Status, errMsg, filePath string) *core.Result {
	lines := 0
	if content != "" {
		lines = len(strings.Split(content, "\n"))
	}
	return &core.Result{
		Content: content,
		Status:  status,
		Report: core.Report{
			TotalLines: lines,
			Changes:    []core.LineChange{},
			Error:      errMsg,
			FilePath:   filePath,
		},
		Success:        false,
		PartialHeal:    false,
		Phase1Complete: false,
		InputSizeBytes: len(content),
	}
}

// truncate shortens s to at most n bytes without splitting the trailing rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
