// Package lexer implements the lexical normalization pass that runs before
// structural repair: tab expansion and trailing-whitespace removal, with
// protected constructs and block-scalar bodies passed through untouched.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/yamlmedic/yamlmedic/engine/core"
)

// TabWidth is the number of spaces a tab expands to. It matches the
// canonical two-space indentation unit of Kubernetes manifests.
const TabWidth = 2

// Normalize produces a lexically clean candidate for structural repair.
//
// Guarantees:
//   - the output has the same line count and line order as the input
//   - tabs outside protected constructs are expanded to TabWidth spaces
//   - trailing whitespace is trimmed outside block-scalar bodies
//
// The line-count invariant is relied on by the repair engine, which maps
// parser error locations back to line indexes of the normalized text.
func Normalize(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", core.NewError(core.ErrCodeMalformedEncoding, "input is not valid UTF-8 text")
	}
	in := strings.Split(raw, "\n")
	out := make([]string, len(in))
	inBlock := false
	blockIndent := 0
	for i, line := range in {
		if inBlock {
			// Block-scalar content: blank lines and deeper-indented lines
			// belong to the scalar and are content, not structure.
			if strings.TrimSpace(line) == "" || core.IndentWidth(line) > blockIndent {
				out[i] = line
				continue
			}
			inBlock = false
		}
		stripped := core.StripInlineComment(line)
		if core.IsProtectedStructure(stripped) {
			out[i] = line
		} else {
			expanded := strings.ReplaceAll(line, "\t", strings.Repeat(" ", TabWidth))
			out[i] = strings.TrimRight(expanded, " \t\r")
		}
		if core.IsBlockScalarHeader(stripped) {
			inBlock = true
			blockIndent = core.IndentWidth(line)
		}
	}
	return strings.Join(out, "\n"), nil
}
