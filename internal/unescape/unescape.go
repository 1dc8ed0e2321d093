// Package unescape turns the backslash-escaped string fragments returned by
// the translation endpoint into plain text.
package unescape

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// Unescape resolves string-literal escapes in s:
//
//	\NNN    one to three octal digits, read greedily, as a code point
//	\uXXXX  exactly four hex digits as a code point (surrogate pairs are joined)
//	\b \f \n \r \t \" \'
//
// Any other escaped character is emitted without its backslash, a trailing
// lone backslash is kept, and a \u with fewer than four hex digits after it
// emits a literal "u". Unescape never fails.
func Unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		if i == len(s)-1 {
			sb.WriteByte('\\')
			break
		}

		next := s[i+1]
		switch {
		case isOctal(next):
			code, j := 0, i+1
			for n := 0; n < 3 && j < len(s) && isOctal(s[j]); n++ {
				code = code*8 + int(s[j]-'0')
				j++
			}
			sb.WriteRune(rune(code))
			i = j - 1
		case next == 'u':
			r, ok := hex4(s, i+2)
			if !ok {
				sb.WriteByte('u')
				i++
				continue
			}
			i += 5
			if utf16.IsSurrogate(r) && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if r2, ok := hex4(s, i+3); ok {
					if joined := utf16.DecodeRune(r, r2); joined != unicode.ReplacementChar {
						sb.WriteRune(joined)
						i += 6
						continue
					}
				}
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte(simple(next))
			i++
		}
	}

	return sb.String()
}

func simple(c byte) byte {
	switch c {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	// \" \' \\ \/ and everything unknown
	return c
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

// hex4 parses the four hex digits starting at s[at].
func hex4(s string, at int) (rune, bool) {
	if at+4 > len(s) {
		return 0, false
	}
	var r rune
	for _, c := range []byte(s[at : at+4]) {
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(v)
	}
	return r, true
}
