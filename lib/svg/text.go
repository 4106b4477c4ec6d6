package svg

import "strings"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// EscapeText escapes character data. Quotes and whitespace are kept as is.
func EscapeText(text string) string {
	return textEscaper.Replace(text)
}

// EscapeAttr escapes a double quoted attribute value. Whitespace other than spaces is
// written as character references so that it survives attribute value normalization.
func EscapeAttr(value string) string {
	return attrEscaper.Replace(value)
}
