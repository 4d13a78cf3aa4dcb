// Package segmenter detects chapter boundaries in a manuscript. A
// weighted pattern ensemble proposes boundary candidates, overlapping
// candidates are deduplicated by weight, and the survivors partition
// the document into scored chapters.
package segmenter

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"inkwell/internal/config"
	"inkwell/internal/htmltext"
)

// Chapter is one detected chapter candidate.
type Chapter struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Type       string  `json:"type"`
	WordCount  int     `json:"word_count"`
	Confidence float64 `json:"confidence"`
}

// Result is the full segmentation outcome.
type Result struct {
	Chapters          []Chapter `json:"chapters"`
	TotalWords        int       `json:"total_words"`
	ChapterCount      int       `json:"chapter_count"`
	AverageConfidence float64   `json:"average_confidence"`
}

// candidate is a boundary proposal before overlap resolution.
type candidate struct {
	start      int
	end        int
	title      string
	typ        string
	weight     int
	confidence float64
}

// Segmenter runs the pattern ensemble over documents.
type Segmenter struct {
	patterns []Pattern
	logger   *slog.Logger
}

// New creates a segmenter with the embedded pattern ensemble.
func New(logger *slog.Logger) (*Segmenter, error) {
	patterns, err := LoadPatterns()
	if err != nil {
		return nil, fmt.Errorf("load segmentation patterns: %w", err)
	}
	return &Segmenter{patterns: patterns, logger: logger}, nil
}

// tinyDocumentWords gates the word-count heuristics: below this size
// there is not enough text for short-chapter folding or word-count
// confidence penalties to mean anything, so both are skipped.
const tinyDocumentWords = 100

// Segment partitions a document into chapter candidates. It never
// fails: a document with no detectable structure yields one fallback
// chapter holding the whole text with confidence 0.5.
func (s *Segmenter) Segment(text string) *Result {
	matches := s.collect(text)
	matches = resolveOverlaps(matches)

	tiny := htmltext.CountWords(text) < tinyDocumentWords
	chapters := s.buildChapters(text, matches, tiny)
	if len(chapters) == 0 {
		chapters = []Chapter{{
			Title:      "Untitled Chapter",
			Content:    text,
			Type:       "fallback",
			WordCount:  htmltext.CountWords(text),
			Confidence: 0.5,
		}}
	}

	chapters = splitLongChapters(chapters)

	result := &Result{
		Chapters:     chapters,
		ChapterCount: len(chapters),
	}
	var confSum float64
	for _, c := range chapters {
		result.TotalWords += c.WordCount
		confSum += c.Confidence
	}
	if len(chapters) > 0 {
		result.AverageConfidence = confSum / float64(len(chapters))
	}

	s.logger.Debug("segmentation complete",
		"chapters", result.ChapterCount,
		"total_words", result.TotalWords,
		"average_confidence", result.AverageConfidence,
	)

	return result
}

// collect runs every pattern over the whole text.
func (s *Segmenter) collect(text string) []candidate {
	var out []candidate
	for _, p := range s.patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if p.Type == "caps" && !isolatedLine(text, start, end) {
				continue
			}
			raw := text[start:end]
			if len(loc) >= 4 && loc[2] >= 0 {
				raw = text[loc[2]:loc[3]]
			}
			out = append(out, candidate{
				start:      start,
				end:        end,
				title:      cleanTitle(raw),
				typ:        p.Type,
				weight:     p.Weight,
				confidence: p.Confidence,
			})
		}
	}
	return out
}

// resolveOverlaps deduplicates candidates claiming the same heading:
// two matches overlap when their spans intersect and their starts fall
// within the overlap window (an HTML h1 and the chapter pattern firing
// on its inner text, for example). Greatest weight wins; ties break
// toward the earliest start. Distinct headings that merely sit close
// together are all kept.
func resolveOverlaps(matches []candidate) []candidate {
	sortCandidates(matches)

	var kept []candidate
	for _, m := range matches {
		if len(kept) > 0 {
			last := &kept[len(kept)-1]
			if m.start < last.end && m.start-last.start < config.OverlapWindow {
				if m.weight > last.weight {
					*last = m
				}
				continue
			}
		}
		kept = append(kept, m)
	}
	return kept
}

// sortCandidates orders by start position, heavier weight first on
// exact ties so the greedy overlap pass keeps the right one.
func sortCandidates(matches []candidate) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].weight > matches[j].weight
	})
}

// buildChapters partitions the text at the surviving boundaries.
// Content before the first boundary is preamble and is discarded;
// chapters under the minimum word count fold into their predecessor
// (skipped for tiny documents, where every chapter would fold away).
func (s *Segmenter) buildChapters(text string, matches []candidate, tiny bool) []Chapter {
	var chapters []Chapter
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].start
		}

		content := text[m.start:end]
		if m.end <= end {
			// Strip the heading itself from the body
			content = text[m.end:end]
		}
		content = strings.TrimLeft(content, "\r\n")

		wc := htmltext.CountWords(content)
		if wc < config.MinChapterWords && !tiny {
			if len(chapters) > 0 {
				prev := &chapters[len(chapters)-1]
				prev.Content += text[m.start:end]
				prev.WordCount = htmltext.CountWords(prev.Content)
				prev.Confidence = score(baseOf(s.patterns, prev.Type), prev.WordCount, prev.Title, tiny)
			}
			// First match with a short body joins the discarded preamble
			continue
		}

		chapters = append(chapters, Chapter{
			Title:      m.title,
			Content:    content,
			Type:       m.typ,
			WordCount:  wc,
			Confidence: score(m.confidence, wc, m.title, tiny),
		})
	}
	return chapters
}

// score applies the word-count and title-length adjustments to a base
// confidence and clamps to [0.1, 1.0]. Word-count adjustments are
// meaningless on tiny documents and are skipped there.
func score(base float64, wordCount int, title string, tiny bool) float64 {
	c := base
	if !tiny {
		if wordCount > 500 {
			c += 0.1
		}
		if wordCount < 100 {
			c -= 0.2
		}
	}
	titleLen := len([]rune(title))
	switch {
	case titleLen >= 5 && titleLen <= 50:
		c += 0.05
	case titleLen < 5:
		c -= 0.1
	}
	if c < 0.1 {
		c = 0.1
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

func baseOf(patterns []Pattern, typ string) float64 {
	for _, p := range patterns {
		if p.Type == typ {
			return p.Confidence
		}
	}
	return 0.5
}

// isolatedLine reports whether [start, end) is its own line with blank
// lines (or the document boundary) on both sides. Required for the
// all-caps pattern, which otherwise fires on shouted dialogue.
func isolatedLine(text string, start, end int) bool {
	return blankBefore(text, start) && blankAfter(text, end)
}

func blankBefore(text string, pos int) bool {
	seen := 0
	for i := pos - 1; i >= 0; i-- {
		switch text[i] {
		case '\n':
			seen++
			if seen == 2 {
				return true
			}
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

func blankAfter(text string, pos int) bool {
	seen := 0
	for i := pos; i < len(text); i++ {
		switch text[i] {
		case '\n':
			seen++
			if seen == 2 {
				return true
			}
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanTitle strips markup and markdown prefixes from a heading match.
// All-caps headings are normalized to title case.
func cleanTitle(raw string) string {
	t := htmltext.StripTags(raw)
	t = strings.TrimLeft(t, "# \t")
	t = whitespaceRe.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	if isAllCaps(t) {
		t = titleCase(t)
	}
	return t
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
