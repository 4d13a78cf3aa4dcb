// Package htmltext reduces rich-text HTML to plain text for word
// counting and plain-format export. Script and style blocks and HTML
// comments are removed before tag stripping so their contents never
// leak into counts.
package htmltext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	scriptRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

	// Block-level closers become newlines so that adjacent paragraphs
	// do not fuse into one word.
	blockRe = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|blockquote|tr)>|<br\s*/?>`)

	strict = bluemonday.StrictPolicy()
)

// StripTags returns the plain text of an HTML fragment. Entities are
// unescaped; paragraph boundaries become newlines.
func StripTags(content string) string {
	if content == "" {
		return ""
	}
	text := scriptRe.ReplaceAllString(content, "")
	text = styleRe.ReplaceAllString(text, "")
	text = commentRe.ReplaceAllString(text, "")
	text = blockRe.ReplaceAllString(text, "\n")
	text = strict.Sanitize(text)
	return html.UnescapeString(text)
}

// CountWords counts whitespace-separated tokens of the content with
// HTML stripped. This is the word-count invariant shared by chapters,
// documents and imports.
func CountWords(content string) int {
	return len(strings.Fields(StripTags(content)))
}

// Paragraphs splits stripped text into non-empty paragraphs. Used by
// the plain-format exporters.
func Paragraphs(content string) []string {
	var out []string
	for _, line := range strings.Split(StripTags(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
