package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/yamlmedic/yamlmedic/engine/audit"
	"github.com/yamlmedic/yamlmedic/engine/core"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// renderResults prints one row per audited manifest, as JSON when requested
// or when stdout is not a terminal.
func renderResults(w io.Writer, results []*core.Result, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if !stdoutIsTerminal() {
		for _, r := range results {
			fmt.Fprintf(w, "%s\t%s\tchanges=%d\n", r.FilePath, r.Status, r.Report.LinesChanged)
		}
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(
			headerStyle.Render("FILE"),
			headerStyle.Render("STATUS"),
			headerStyle.Render("RESULT"),
			headerStyle.Render("CHANGES"),
		)
	for _, r := range results {
		t.Row(
			r.FilePath,
			statusStyle(r).Render(string(r.Status)),
			resultLabel(r),
			fmt.Sprintf("%d", r.Report.LinesChanged),
		)
	}
	fmt.Fprintln(w, t.String())
	return nil
}

// renderSummary prints aggregate numbers and the contextual next step.
func renderSummary(w io.Writer, summary audit.AuditSummary, fixMode bool, path string) {
	fmt.Fprintf(w, "Total files: %d\n", summary.TotalFiles)
	fmt.Fprintf(w, "Success rate: %.1f%%\n", summary.SuccessRate*100)
	if summary.BackupsCreated > 0 {
		fmt.Fprintf(w, "Backups created: %d\n", summary.BackupsCreated)
	}
	if summary.RecommendForceWrite {
		fmt.Fprintln(w, "\nPartial heals detected: best-effort fixes are available.")
		fmt.Fprintf(w, "Next: yamlmedic heal %s --fix --force\n", path)
	}
	if !fixMode {
		fmt.Fprintln(w, "\nNo files were modified. To apply these repairs, run:")
		fmt.Fprintf(w, "Next: yamlmedic heal %s --fix\n", path)
	}
}

func statusStyle(r *core.Result) lipgloss.Style {
	switch {
	case r.Success:
		return successStyle
	case r.PartialHeal:
		return partialStyle
	default:
		return failureStyle
	}
}

func resultLabel(r *core.Result) string {
	switch {
	case r.Success:
		return "healed"
	case r.PartialHeal:
		return "partial"
	default:
		return "failed"
	}
}

func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
