package structurer

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/yamlmedic/yamlmedic/engine/core"
)

// ParseFailure is a structural error localized to a source position.
// Line is 0-based; a Line of -1 means the engine reported no usable
// location, which disables automatic fixing for the document.
type ParseFailure struct {
	Line    int
	Column  int
	Message string
}

// Located reports whether the failure carries a usable source position.
func (f *ParseFailure) Located() bool {
	return f != nil && f.Line >= 0
}

// ValidationResult is the outcome of one validate-and-canonicalize pass.
// Validation failures are values, never propagated as panics.
type ValidationResult struct {
	OK        bool
	Canonical string
	Failure   *ParseFailure
}

// positionRe matches the "[line:column]" location prefix goccy/go-yaml puts
// on syntax errors. Both numbers are 1-based.
var positionRe = regexp.MustCompile(`\[(\d+):(\d+)\]`)

// ValidateAndCanonicalize parses the candidate with the embedded YAML engine
// and, on success, re-serializes it in canonical style: two-space mapping
// indent and indented sequences, the conventional Kubernetes layout. Key
// order survives the round trip via ordered-map decoding. Documents carrying
// constructs the decoded value cannot represent (anchors, aliases,
// directives, comments, block scalar styles) are validated but returned
// verbatim, so validation never rewrites them.
func (s *Structurer) ValidateAndCanonicalize(text string) ValidationResult {
	var doc any
	if err := yaml.UnmarshalWithOptions([]byte(text), &doc, yaml.UseOrderedMap()); err != nil {
		return ValidationResult{Failure: extractFailure(err)}
	}
	if hasTrailingDocument(text) {
		// Unmarshal decodes only the first document; accepting this input
		// would silently drop the rest.
		return ValidationResult{Failure: &ParseFailure{
			Line:    -1,
			Column:  -1,
			Message: "expected a single document in the stream",
		}}
	}
	if doc == nil || mustKeepVerbatim(text) {
		return ValidationResult{OK: true, Canonical: strings.TrimRight(text, " \t\n")}
	}
	out, err := yaml.MarshalWithOptions(doc,
		yaml.Indent(s.cfg.IndentUnit),
		yaml.IndentSequence(true),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return ValidationResult{Failure: &ParseFailure{Line: -1, Column: -1, Message: err.Error()}}
	}
	return ValidationResult{OK: true, Canonical: strings.TrimRight(string(out), "\n")}
}

// hasTrailingDocument reports whether text holds more than one document.
func hasTrailingDocument(text string) bool {
	dec := yaml.NewDecoder(strings.NewReader(text))
	var first any
	if err := dec.Decode(&first); err != nil {
		return false
	}
	var rest any
	return dec.Decode(&rest) != io.EOF
}

// mustKeepVerbatim reports whether the document contains constructs that do
// not survive a decode-encode round trip: anchors and aliases (resolved and
// duplicated by decoding), directives, comments, and explicit block scalar
// styles. Protected content is never rewritten by a successful validation.
func mustKeepVerbatim(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "#") {
			return true
		}
		stripped := core.StripInlineComment(line)
		if core.IsProtectedStructure(stripped) ||
			core.IsBlockScalarHeader(stripped) ||
			core.ContainsAnchorOrAlias(stripped) {
			return true
		}
	}
	return false
}

// extractFailure derives a ParseFailure from the engine's error. The engine
// reports positions as a "[line:column]" prefix; when neither the error text
// nor its formatted rendering carries one, the failure is unlocalized.
func extractFailure(err error) *ParseFailure {
	msg := err.Error()
	m := positionRe.FindStringSubmatch(msg)
	if m == nil {
		formatted := yaml.FormatError(err, false, false)
		if m = positionRe.FindStringSubmatch(formatted); m != nil {
			msg = formatted
		}
	}
	if m == nil {
		return &ParseFailure{Line: -1, Column: -1, Message: msg}
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return &ParseFailure{Line: line - 1, Column: col, Message: msg}
}
