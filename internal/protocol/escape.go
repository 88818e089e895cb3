package protocol

import "strings"

// Escape renders a field value so that literal `&`, `=`, newlines, and
// backslashes inside it do not collide with the line grammar's delimiters.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '&':
			b.WriteString(`\&`)
		case '=':
			b.WriteString(`\=`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Unescape is the inverse of Escape. An unrecognized escape sequence, or a
// trailing bare backslash, is kept verbatim.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '&':
			b.WriteByte('&')
		case '=':
			b.WriteByte('=')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// EncodeText maps document text to its wire form: the document's newlines
// become TAB characters, which the client restores. The client guarantees
// the user cannot type a literal TAB, so the mapping is unambiguous.
func EncodeText(s string) string {
	return strings.ReplaceAll(s, "\n", "\t")
}

// DecodeText restores document text from its wire form.
func DecodeText(s string) string {
	return strings.ReplaceAll(s, "\t", "\n")
}

// splitUnescaped splits s on every occurrence of sep that is not preceded
// by a backslash escape. The returned tokens are still escaped.
func splitUnescaped(s string, sep byte) []string {
	var tokens []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++ // skip the escaped character
		case sep:
			tokens = append(tokens, s[start:i])
			start = i + 1
		}
	}
	tokens = append(tokens, s[start:])
	return tokens
}

// cutUnescaped splits s at the first unescaped occurrence of sep.
func cutUnescaped(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
