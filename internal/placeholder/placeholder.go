// Package placeholder shields parts of a text that must survive translation
// unchanged (code, markup, links) behind numbered markers such as [PH0] and
// puts them back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reFencedCode = regexp.MustCompile("(?s)```.*?```")
	reInlineCode = regexp.MustCompile("`[^`\n]+`")
	reHTMLTag    = regexp.MustCompile(`</?[A-Za-z][^>]*>`)
	reURL        = regexp.MustCompile(`https?://[^\s<>"]*[^\s<>".,;:!?)\]]`)

	// Machine translation sometimes inserts spaces or changes case inside
	// the marker.
	reMarker = regexp.MustCompile(`(?i)\[\s*PH\s*(\d+)\s*\]`)
)

// Protected is a text with its shielded fragments replaced by markers.
type Protected struct {
	Text    string
	markers []string
}

// Protect replaces fenced code blocks, inline code spans, HTML tags and URLs
// with markers, in that order of precedence.
func Protect(text string) *Protected {
	p := &Protected{}

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(p.markers))
		p.markers = append(p.markers, match)
		return id
	}

	for _, re := range []*regexp.Regexp{reFencedCode, reInlineCode, reHTMLTag, reURL} {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	p.Text = text
	return p
}

// Len returns the number of shielded fragments.
func (p *Protected) Len() int { return len(p.markers) }

// Restore puts the shielded fragments back into translated and returns the
// indices of markers the translation dropped. Unknown indices are left as
// they are. A fragment shielded after an earlier one may contain that
// earlier marker (a tag around inline code); such markers are expanded too.
func (p *Protected) Restore(translated string) (string, []int) {
	seen := make([]bool, len(p.markers))

	// limit keeps expansion to markers created before the enclosing one, so a
	// fragment that literally contains its own marker cannot recurse forever.
	var expand func(s string, limit int) string
	expand = func(s string, limit int) string {
		return reMarker.ReplaceAllStringFunc(s, func(match string) string {
			sub := reMarker.FindStringSubmatch(match)
			idx, err := strconv.Atoi(sub[1])
			if err != nil || idx < 0 || idx >= limit {
				return match
			}
			seen[idx] = true
			return expand(p.markers[idx], idx)
		})
	}
	restored := expand(translated, len(p.markers))

	var missing []int
	for i, ok := range seen {
		if !ok {
			missing = append(missing, i)
		}
	}
	return restored, missing
}

// MissingFragments renders the fragments at the given indices for a warning.
func (p *Protected) MissingFragments(indices []int) string {
	parts := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(p.markers) {
			parts = append(parts, strconv.Quote(p.markers[i]))
		}
	}
	return strings.Join(parts, ", ")
}
