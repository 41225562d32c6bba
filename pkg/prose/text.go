package prose

import "strings"

// markupEscaper guards string literals before they are interpolated into the
// document. Structural characters are backslash-escaped and embedded
// newlines become the visible two-character sequence `\n`, so no literal can
// break out of the span it is quoted in.
var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"`", "\\`",
	"*", `\*`,
	"#", `\#`,
	"\n", `\\n`,
)

// EscapeMarkup escapes a string literal for safe embedding in prose.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// JoinList renders descriptions as an English enumeration: an empty list
// yields the empty string, a single item is returned unchanged, and longer
// lists separate every item with a comma, with "and" before the last
// ("X, Y, and Z").
func JoinList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
