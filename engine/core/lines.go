package core

import (
	"regexp"
	"strings"
)

// Line classification predicates shared by the lexical normalizer and the
// structural repair engine. They operate on raw line text; callers strip
// inline comments first where the predicate definition requires it.

var (
	anchorAliasRe    = regexp.MustCompile(`^[&*][a-zA-Z0-9_-]+`)
	anchorAliasAnyRe = regexp.MustCompile(`(?:^|\s)[&*][a-zA-Z0-9_-]+`)
	inlineComment    = regexp.MustCompile(`\s+#`)
	blockHeaderRe    = regexp.MustCompile(`(?:^|\s)[|>](?:[0-9]+[+-]?|[+-][0-9]*)?$`)
)

// StripInlineComment removes a trailing inline comment (whitespace followed
// by '#') and any trailing whitespace. A line that is only a comment is
// returned unchanged apart from trailing whitespace, so callers can still
// detect it via its leading '#'.
func StripInlineComment(line string) string {
	if loc := inlineComment.FindStringIndex(line); loc != nil {
		line = line[:loc[0]]
	}
	return strings.TrimRight(line, " \t\r")
}

// IsProtectedStructure reports whether a line must never be rewritten by the
// repair engine: YAML directives, document boundaries, anchors and aliases,
// and block-scalar headers starting the line.
func IsProtectedStructure(line string) bool {
	content := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(content, "%YAML"),
		strings.HasPrefix(content, "%TAG"),
		strings.HasPrefix(content, "---"),
		strings.HasPrefix(content, "..."),
		strings.HasPrefix(content, "|"),
		strings.HasPrefix(content, ">"):
		return true
	}
	return anchorAliasRe.MatchString(content)
}

// ContainsAnchorOrAlias reports whether a comment-stripped line carries an
// anchor or alias token anywhere, including in value position. Unlike
// IsProtectedStructure it catches "key: &anchor" and "key: *alias" lines,
// whose markers are lost if the document is re-serialized from its decoded
// value.
func ContainsAnchorOrAlias(stripped string) bool {
	return anchorAliasAnyRe.MatchString(stripped)
}

// IsMappingKey reports whether a comment-stripped line is a mapping key:
// it ends with ':' and is not a sequence item. This is the parent line the
// indent search stops at.
func IsMappingKey(stripped string) bool {
	if !strings.HasSuffix(stripped, ":") {
		return false
	}
	return !strings.HasPrefix(strings.TrimLeft(stripped, " \t"), "- ")
}

// IsBlockScalarHeader reports whether a comment-stripped line ends with a
// literal or folded block-scalar indicator ('|' or '>', with optional
// chomping and indentation indicators).
func IsBlockScalarHeader(stripped string) bool {
	return blockHeaderRe.MatchString(strings.TrimSpace(stripped))
}

// IndentWidth counts leading whitespace characters (spaces and tabs) of a
// line. Tabs count as one character; the lexical normalizer expands them
// before any width-sensitive comparison.
func IndentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
