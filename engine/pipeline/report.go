package pipeline

import (
	"strings"

	"github.com/yamlmedic/yamlmedic/engine/core"
)

// BuildReport compares the original unnormalized input against the final
// content positionally, recording every line that differs. Lines beyond the
// shorter side are not reported; TotalLines always reflects the original.
func BuildReport(original, final string) core.Report {
	origLines := splitLines(original)
	finalLines := splitLines(final)
	n := len(origLines)
	if len(finalLines) < n {
		n = len(finalLines)
	}
	changes := make([]core.LineChange, 0)
	for i := 0; i < n; i++ {
		if origLines[i] == finalLines[i] {
			continue
		}
		changes = append(changes, core.LineChange{
			Line:           i + 1,
			Original:       origLines[i],
			Fixed:          finalLines[i],
			IndentOriginal: core.IndentWidth(origLines[i]),
			IndentFixed:    core.IndentWidth(finalLines[i]),
		})
	}
	return core.Report{
		TotalLines:   len(origLines),
		LinesChanged: len(changes),
		Changes:      changes,
	}
}

// splitLines splits on LF like the repair engine does. A single trailing
// newline does not count as an extra line, so "a: 1\n" is one line, not two.
func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
