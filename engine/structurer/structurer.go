// Package structurer implements the structural repair engine: it validates
// manifest text against an embedded YAML engine, localizes failures to a
// line, applies minimal indentation corrections and re-validates, within a
// bounded attempt budget. Multi-document inputs are split at document
// boundaries and each fragment is repaired independently.
package structurer

import (
	"strings"

	"github.com/yamlmedic/yamlmedic/engine/core"
)

const (
	// IndentUnit is the canonical manifest indentation step.
	IndentUnit = 2
	// MaxAttempts bounds the parse-locate-fix-revalidate loop per document.
	// The bound guarantees termination and prevents oscillation between two
	// invalid states.
	MaxAttempts = 3
)

// Config carries the fixed repair parameters.
type Config struct {
	IndentUnit  int
	MaxAttempts int
}

// DefaultConfig returns the canonical repair configuration.
func DefaultConfig() Config {
	return Config{IndentUnit: IndentUnit, MaxAttempts: MaxAttempts}
}

// Structurer repairs the structure of YAML manifests. It holds only
// immutable configuration, so a single instance is safe for concurrent use.
type Structurer struct {
	cfg Config
}

// New creates a Structurer with the given configuration, falling back to
// defaults for unset fields.
func New(cfg Config) *Structurer {
	if cfg.IndentUnit <= 0 {
		cfg.IndentUnit = IndentUnit
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = MaxAttempts
	}
	return &Structurer{cfg: cfg}
}

// Attempt records one iteration of the repair loop. Attempts are chained:
// attempt n+1 operates on the output of attempt n.
type Attempt struct {
	Index   int
	Applied bool
	Failure *ParseFailure
}

// DocumentResult is the terminal state of a single document's repair.
type DocumentResult struct {
	Text     string
	Status   core.Status
	Attempts []Attempt
}

// ProcessYAML runs the full structural repair over lexically normalized
// text: line-ending normalization, multi-document splitting, and per
// document the bounded repair loop.
func (s *Structurer) ProcessYAML(text string) (string, core.Status) {
	normalized := NormalizeLineEndings(text)
	if isMultiDocument(normalized) {
		return s.processMultiDoc(normalized), core.StatusMultiDocHandled
	}
	res := s.RepairDocument(normalized)
	return res.Text, res.Status
}

// NormalizeLineEndings converts CRLF and lone CR to LF and trims trailing
// blank lines from the whole text. It runs before any structural step so
// error line numbers refer to LF-separated lines.
func NormalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimRight(text, " \t\n")
}

// RepairDocument runs the per-document state machine:
//
//	Unvalidated -> {Success, Iterating(1..MaxAttempts), ProtectedSkip, Fail}
//
// Success is terminal on any attempt's validation pass. ProtectedSkip is
// terminal and non-retryable once the targeted fix line is protected. An
// unlocalized failure disables fixing and degrades directly to Fail with
// the best-effort text.
func (s *Structurer) RepairDocument(text string) DocumentResult {
	res := s.ValidateAndCanonicalize(text)
	if res.OK {
		return DocumentResult{Text: res.Canonical, Status: core.StatusStructureOK}
	}
	current := text
	failure := res.Failure
	attempts := make([]Attempt, 0, s.cfg.MaxAttempts)
	for i := 1; i <= s.cfg.MaxAttempts; i++ {
		if !failure.Located() {
			attempts = append(attempts, Attempt{Index: i, Failure: failure})
			return DocumentResult{Text: current, Status: core.StatusStructureFail, Attempts: attempts}
		}
		fixed, applied, protected := s.AutoFixIndentation(current, failure)
		if protected {
			attempts = append(attempts, Attempt{Index: i, Failure: failure})
			return DocumentResult{Text: current, Status: core.StatusProtectedSkip, Attempts: attempts}
		}
		res = s.ValidateAndCanonicalize(fixed)
		if res.OK {
			attempts = append(attempts, Attempt{Index: i, Applied: applied})
			return DocumentResult{Text: res.Canonical, Status: core.FixedStatus(i), Attempts: attempts}
		}
		attempts = append(attempts, Attempt{Index: i, Applied: applied, Failure: res.Failure})
		current = fixed
		failure = res.Failure
	}
	return DocumentResult{Text: current, Status: core.StatusStructureFail, Attempts: attempts}
}

// AutoFixIndentation applies one line-scoped indentation correction at the
// failure position. It returns the (possibly unchanged) text, whether a
// rewrite was applied, and whether the target line is protected and repair
// must be aborted for this document.
//
// The target indent is the parent indent plus one unit, uniformly for
// mapping entries and sequence-item markers. The line is rewritten only if
// its indent differs from the target, it still contains a tab, or its
// indent is not a multiple of the unit; lines that happen to be acceptable
// are left alone to avoid gratuitous edits.
func (s *Structurer) AutoFixIndentation(text string, failure *ParseFailure) (string, bool, bool) {
	if !failure.Located() {
		return text, false, false
	}
	all := strings.Split(text, "\n")
	if failure.Line >= len(all) {
		return text, false, false
	}
	target := expandLeadingTabs(all[failure.Line], s.cfg.IndentUnit)
	if core.IsProtectedStructure(target) {
		return text, false, true
	}
	currentIndent := len(target) - len(strings.TrimLeft(target, " "))
	parentIndent := s.FindParentIndent(all, failure.Line)
	wantIndent := parentIndent + s.cfg.IndentUnit

	if currentIndent != wantIndent || strings.Contains(all[failure.Line], "\t") || currentIndent%s.cfg.IndentUnit != 0 {
		content := strings.TrimRight(strings.TrimLeft(target, " \t"), " \t")
		all[failure.Line] = strings.Repeat(" ", wantIndent) + content
		return strings.Join(all, "\n"), true, false
	}
	return text, false, false
}

// FindParentIndent scans backward from the failing line for the nearest
// enclosing mapping key, skipping blank lines, comment-only lines and
// protected structures. Top of document means parent indent 0.
func (s *Structurer) FindParentIndent(all []string, errLine int) int {
	for i := errLine - 1; i >= 0; i-- {
		stripped := core.StripInlineComment(all[i])
		trimmed := strings.TrimSpace(stripped)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || core.IsProtectedStructure(stripped) {
			continue
		}
		if core.IsMappingKey(stripped) {
			return core.IndentWidth(stripped)
		}
	}
	return 0
}

// expandLeadingTabs replaces tabs in the leading whitespace run with the
// indentation unit's worth of spaces, leaving the line content untouched.
func expandLeadingTabs(line string, unit int) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	lead := strings.ReplaceAll(line[:i], "\t", strings.Repeat(" ", unit))
	return lead + line[i:]
}

// isMultiDocument reports whether line-ending-normalized text is a
// multi-document stream: it contains a boundary marker and begins with one.
func isMultiDocument(text string) bool {
	return strings.Contains(text, "---") && strings.HasPrefix(strings.TrimSpace(text), "---")
}

// processMultiDoc splits the stream at document boundaries, repairs each
// non-blank fragment independently and rejoins the results with a single
// canonical boundary delimiter. Boundaries are recognized only at the start
// of a line, so "---" inside a scalar value never splits a document.
func (s *Structurer) processMultiDoc(text string) string {
	fragments := SplitDocuments(text)
	healed := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		res := s.RepairDocument(fragment)
		cleaned := stripLeadingBoundary(res.Text)
		if strings.TrimSpace(cleaned) == "" {
			continue
		}
		healed = append(healed, cleaned)
	}
	return strings.Join(healed, "\n---\n")
}

// SplitDocuments splits a normalized stream into fragments at lines that
// begin with the document boundary marker. Each fragment keeps its leading
// boundary line.
func SplitDocuments(text string) []string {
	all := strings.Split(strings.TrimSpace(text), "\n")
	var fragments []string
	var current []string
	for _, line := range all {
		if strings.HasPrefix(line, "---") && len(current) > 0 {
			fragments = append(fragments, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		fragments = append(fragments, strings.Join(current, "\n"))
	}
	return fragments
}

// stripLeadingBoundary drops a leading "---" line from a healed fragment so
// the rejoin step emits exactly one boundary between fragments.
func stripLeadingBoundary(text string) string {
	first, rest, found := strings.Cut(text, "\n")
	if strings.TrimSpace(first) == "---" {
		if found {
			return rest
		}
		return ""
	}
	return text
}
