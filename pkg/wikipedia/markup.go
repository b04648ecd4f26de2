package wikipedia

import "strings"

// StripMarkup removes every tag from s: each span from a '<' to the next
// '>' after it is cut out. An unterminated '<' drops the rest of the string.
func StripMarkup(s string) string {
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			return s
		}
		end := strings.IndexByte(s[start:], '>')
		if end < 0 {
			return s[:start]
		}
		s = s[:start] + s[start+end+1:]
	}
}
