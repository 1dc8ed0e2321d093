// Package chunker splits long texts into pieces small enough for a single
// translation request, preferring paragraph and sentence boundaries, and
// reassembles the translated pieces with the original separators.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChars is the piece size used by the CLI unless overridden.
const DefaultMaxChars = 2000

// Piece is one translatable fragment and the whitespace that followed it in
// the source text.
type Piece struct {
	Text string
	Sep  string
}

// Split cuts the trimmed text into pieces of at most maxChars code points.
// Cuts are attempted, in order of preference, at:
//  1. Paragraph boundaries (blank line)
//  2. Sentence-ending punctuation
//  3. Whitespace (word boundary)
//  4. A hard cut at maxChars
//
// Concatenating every Text and Sep gives back strings.TrimSpace(text).
// maxChars <= 0 disables splitting. Blank text yields no pieces.
func Split(text string, maxChars int) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if maxChars <= 0 || len(runes) <= maxChars {
		return []Piece{{Text: text}}
	}

	var pieces []Piece
	for len(runes) > maxChars {
		cut := findSplit(runes[:maxChars])

		end := cut
		for end > 0 && unicode.IsSpace(runes[end-1]) {
			end--
		}
		next := cut
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}

		pieces = append(pieces, Piece{Text: string(runes[:end]), Sep: string(runes[end:next])})
		runes = runes[next:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, Piece{Text: string(runes)})
	}

	return pieces
}

// Texts returns the Text of every piece.
func Texts(pieces []Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

// Join reassembles translated pieces using the separators recorded by Split.
// translated must be index-aligned with pieces.
func Join(pieces []Piece, translated []string) string {
	var b strings.Builder
	for i, p := range pieces {
		if i < len(translated) {
			b.WriteString(translated[i])
		}
		b.WriteString(p.Sep)
	}
	return b.String()
}

// findSplit returns the rune index in candidate at which to cut. The result
// is always at least 1 because candidate never starts with whitespace.
func findSplit(candidate []rune) int {
	s := string(candidate)
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if idx := strings.LastIndex(s, sep); idx > 0 {
			return utf8.RuneCountInString(s[:idx])
		}
	}

	for i := len(candidate) - 2; i > 0; i-- {
		r := candidate[i]
		if isFullStop(r) {
			return i + 1
		}
		if (r == '.' || r == '!' || r == '?') && unicode.IsSpace(candidate[i+1]) {
			return i + 1
		}
	}

	for i := len(candidate) - 1; i > 0; i-- {
		if unicode.IsSpace(candidate[i]) {
			return i
		}
	}

	return len(candidate)
}

// isFullStop reports CJK sentence terminators, which are not followed by a space.
func isFullStop(r rune) bool {
	return r == 0x3002 || r == 0xFF01 || r == 0xFF1F
}
