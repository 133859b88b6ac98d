package sanitize

import (
	"strings"
	"unicode"
)

// DefaultMaxLen bounds a single sanitized value printed to the terminal.
const DefaultMaxLen = 240

// Terminal makes untrusted text (file paths, matched source) safe to print
// on one terminal line. Line breaks and tabs become spaces; other control
// characters, including ESC and bidi overrides, are dropped so matched text
// cannot drive the terminal. Values longer than maxLen runes are cut and end in "...".
// A maxLen of zero or less disables the cut.
func Terminal(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			r = ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			continue
		}
		if maxLen > 0 && n == maxLen {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
