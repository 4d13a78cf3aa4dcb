package segmenter

import (
	"fmt"
	"strings"
	"unicode"

	"inkwell/internal/config"
	"inkwell/internal/htmltext"
)

// splitLongChapters divides any chapter over the word budget into
// parts whose boundaries land on sentence-terminating punctuation, not
// mid-sentence. Part k >= 2 gets "(Part k)" appended to the title.
func splitLongChapters(chapters []Chapter) []Chapter {
	var out []Chapter
	for _, ch := range chapters {
		if ch.WordCount <= config.SplitWordBudget {
			out = append(out, ch)
			continue
		}
		out = append(out, splitChapter(ch)...)
	}
	return out
}

func splitChapter(ch Chapter) []Chapter {
	words := wordSpans(ch.Content)
	if len(words) <= config.SplitWordBudget {
		return []Chapter{ch}
	}

	var parts []Chapter
	segStart := 0
	startWord := 0
	for startWord < len(words) {
		var cut int
		if len(parts)+1 == config.MaxSubParts || startWord+config.SplitWordBudget >= len(words) {
			// Final part takes the remainder; the ceiling stops
			// pathological inputs from fanning out without bound
			cut = len(ch.Content)
		} else {
			budgetEnd := words[startWord+config.SplitWordBudget-1][1]
			cut = lastSentenceEnd(ch.Content, segStart, budgetEnd)
			if cut <= segStart {
				// No sentence boundary in range: cut at the word edge
				cut = budgetEnd
			}
		}

		content := strings.TrimSpace(ch.Content[segStart:cut])
		if content != "" {
			parts = append(parts, Chapter{
				Title:      partTitle(ch.Title, len(parts)+1),
				Content:    content,
				Type:       ch.Type,
				WordCount:  htmltext.CountWords(content),
				Confidence: ch.Confidence,
			})
		}

		if cut >= len(ch.Content) {
			break
		}
		segStart = cut
		startWord = firstWordAfter(words, startWord, cut)
	}
	return parts
}

// wordSpans returns the [start, end) byte span of each
// whitespace-separated token.
func wordSpans(text string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(text)})
	}
	return spans
}

// lastSentenceEnd returns the position just after the last '.', '!' or
// '?' in text[from:to], or from when none exists.
func lastSentenceEnd(text string, from, to int) int {
	for i := to - 1; i >= from; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return from
}

func firstWordAfter(words [][2]int, from, pos int) int {
	for i := from; i < len(words); i++ {
		if words[i][0] >= pos {
			return i
		}
	}
	return len(words)
}

func partTitle(title string, k int) string {
	if k == 1 {
		return title
	}
	return fmt.Sprintf("%s (Part %d)", title, k)
}
