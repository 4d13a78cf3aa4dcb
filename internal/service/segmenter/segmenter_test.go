package segmenter

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"inkwell/internal/config"
)

func newTestSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	s, err := New(slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

// sentences generates n words of text as short sentences.
func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("word")
		if (i+1)%10 == 0 {
			b.WriteString(". ")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func TestSegment_MixedInput(t *testing.T) {
	s := newTestSegmenter(t)
	input := "# Prologue\nLorem. \n\nChapter 1: Dawn\nIpsum dolor. \n\nCHAPTER 2\nSit amet."

	result := s.Segment(input)

	if result.ChapterCount != 3 {
		t.Fatalf("ChapterCount = %d, want 3; chapters: %+v", result.ChapterCount, result.Chapters)
	}

	wantTitles := []string{"Prologue", "Chapter 1: Dawn", "Chapter 2"}
	wantTypes := []string{"markdown", "chapter", "chapter"}
	for i, ch := range result.Chapters {
		if ch.Title != wantTitles[i] {
			t.Errorf("chapter %d title = %q, want %q", i, ch.Title, wantTitles[i])
		}
		if ch.Type != wantTypes[i] {
			t.Errorf("chapter %d type = %q, want %q", i, ch.Type, wantTypes[i])
		}
		if ch.Confidence < 0.85 {
			t.Errorf("chapter %d confidence = %v, want >= 0.85", i, ch.Confidence)
		}
	}
}

func TestSegment_Fallback(t *testing.T) {
	s := newTestSegmenter(t)
	text := "just some words without any structure at all, going on for a while."

	result := s.Segment(text)

	if result.ChapterCount != 1 {
		t.Fatalf("ChapterCount = %d, want 1", result.ChapterCount)
	}
	ch := result.Chapters[0]
	if ch.Type != "fallback" {
		t.Errorf("type = %q, want fallback", ch.Type)
	}
	if ch.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", ch.Confidence)
	}
	if ch.Content != text {
		t.Errorf("fallback chapter does not hold the whole text")
	}
	if result.AverageConfidence != 0.5 {
		t.Errorf("AverageConfidence = %v, want 0.5", result.AverageConfidence)
	}
}

func TestSegment_HTMLHeadings(t *testing.T) {
	s := newTestSegmenter(t)
	input := fmt.Sprintf("<h1>First</h1><p>%s</p><h2>Second</h2><p>%s</p>", sentences(150), sentences(150))

	result := s.Segment(input)

	if result.ChapterCount != 2 {
		t.Fatalf("ChapterCount = %d, want 2; %+v", result.ChapterCount, result.Chapters)
	}
	if result.Chapters[0].Title != "First" || result.Chapters[1].Title != "Second" {
		t.Errorf("titles = %q, %q", result.Chapters[0].Title, result.Chapters[1].Title)
	}
	for _, ch := range result.Chapters {
		if ch.Type != "html" {
			t.Errorf("type = %q, want html", ch.Type)
		}
	}
}

func TestSegment_OverlappingPatternsKeepHeaviest(t *testing.T) {
	s := newTestSegmenter(t)
	// The chapter pattern fires on the text inside the h1; only one
	// boundary must survive, with the h1's span
	input := fmt.Sprintf("<h1>Chapter 1</h1>\n%s", sentences(200))

	result := s.Segment(input)

	if result.ChapterCount != 1 {
		t.Fatalf("ChapterCount = %d, want 1; %+v", result.ChapterCount, result.Chapters)
	}
	if result.Chapters[0].Title != "Chapter 1" {
		t.Errorf("title = %q, want %q", result.Chapters[0].Title, "Chapter 1")
	}
}

func TestSegment_ShortChapterFoldsIntoPredecessor(t *testing.T) {
	s := newTestSegmenter(t)
	input := fmt.Sprintf("Chapter 1\n%s\n\nChapter 2\ntoo short\n\nChapter 3\n%s", sentences(200), sentences(200))

	result := s.Segment(input)

	if result.ChapterCount != 2 {
		t.Fatalf("ChapterCount = %d, want 2; titles: %v", result.ChapterCount, titles(result))
	}
	if !strings.Contains(result.Chapters[0].Content, "too short") {
		t.Error("short chapter content did not fold into its predecessor")
	}
	if result.Chapters[1].Title != "Chapter 3" {
		t.Errorf("second chapter title = %q, want %q", result.Chapters[1].Title, "Chapter 3")
	}
}

func TestSegment_PreambleDiscarded(t *testing.T) {
	s := newTestSegmenter(t)
	input := fmt.Sprintf("%s\n\nChapter 1\n%s", sentences(120), sentences(200))

	result := s.Segment(input)

	if result.ChapterCount != 1 {
		t.Fatalf("ChapterCount = %d, want 1", result.ChapterCount)
	}
	if result.TotalWords > 210 {
		t.Errorf("TotalWords = %d, preamble seems to have leaked in", result.TotalWords)
	}
}

func TestSegment_CapsRequiresIsolation(t *testing.T) {
	s := newTestSegmenter(t)
	// Shouted dialogue inline should not become a boundary
	inline := fmt.Sprintf("Chapter 1\n%s\nHE SHOUTED VERY LOUDLY\n%s", sentences(100), sentences(100))
	if got := s.Segment(inline); got.ChapterCount != 1 {
		t.Errorf("inline caps: ChapterCount = %d, want 1; titles: %v", got.ChapterCount, titles(got))
	}

	isolated := fmt.Sprintf("Chapter 1\n%s\n\nTHE LONG ROAD HOME\n\n%s", sentences(100), sentences(100))
	got := s.Segment(isolated)
	if got.ChapterCount != 2 {
		t.Fatalf("isolated caps: ChapterCount = %d, want 2; titles: %v", got.ChapterCount, titles(got))
	}
	if got.Chapters[1].Title != "The Long Road Home" {
		t.Errorf("caps title = %q, want %q", got.Chapters[1].Title, "The Long Road Home")
	}
	if got.Chapters[1].Type != "caps" {
		t.Errorf("type = %q, want caps", got.Chapters[1].Type)
	}
}

func TestSegment_SplitBoundary(t *testing.T) {
	s := newTestSegmenter(t)

	t.Run("3999 words stays whole", func(t *testing.T) {
		result := s.Segment("Chapter 1\n" + sentences(3999))
		if result.ChapterCount != 1 {
			t.Errorf("ChapterCount = %d, want 1", result.ChapterCount)
		}
	})

	t.Run("4001 words splits at sentence terminator", func(t *testing.T) {
		result := s.Segment("Chapter 1\n" + sentences(4001))
		if result.ChapterCount != 2 {
			t.Fatalf("ChapterCount = %d, want 2", result.ChapterCount)
		}
		first, second := result.Chapters[0], result.Chapters[1]
		if !strings.HasSuffix(strings.TrimSpace(first.Content), ".") {
			t.Errorf("part 1 does not end on a sentence terminator: %q", tail(first.Content))
		}
		if first.WordCount > 4000 {
			t.Errorf("part 1 word count = %d, want <= 4000", first.WordCount)
		}
		if second.Title != "Chapter 1 (Part 2)" {
			t.Errorf("part 2 title = %q", second.Title)
		}
		if first.Title != "Chapter 1" {
			t.Errorf("part 1 title = %q", first.Title)
		}
	})
}

func TestSegment_SplitAtSentenceContent(t *testing.T) {
	s := newTestSegmenter(t)

	// 5200 words with a sentence ending just before the budget cursor
	var b strings.Builder
	b.WriteString("Chapter 1\n")
	b.WriteString(sentences(3990))
	b.WriteString("This is the end of thought. But then everything changed again ")
	b.WriteString(sentences(1200))

	result := s.Segment(b.String())
	if result.ChapterCount != 2 {
		t.Fatalf("ChapterCount = %d, want 2", result.ChapterCount)
	}
	if !strings.HasSuffix(strings.TrimSpace(result.Chapters[0].Content), "thought.") {
		t.Errorf("part 1 tail = %q, want it to end with %q", tail(result.Chapters[0].Content), "thought.")
	}
	if !strings.HasPrefix(result.Chapters[1].Content, "But then") {
		t.Errorf("part 2 head = %q, want it to begin with %q", head(result.Chapters[1].Content), "But then")
	}
}

func TestSegment_TotalsAndAverages(t *testing.T) {
	s := newTestSegmenter(t)
	input := fmt.Sprintf("Chapter 1\n%s\n\nChapter 2\n%s", sentences(600), sentences(80))

	result := s.Segment(input)

	if result.ChapterCount != 2 {
		t.Fatalf("ChapterCount = %d, want 2", result.ChapterCount)
	}
	sum := 0
	var confSum float64
	for _, ch := range result.Chapters {
		sum += ch.WordCount
		confSum += ch.Confidence
	}
	if result.TotalWords != sum {
		t.Errorf("TotalWords = %d, want %d", result.TotalWords, sum)
	}
	want := confSum / 2
	if result.AverageConfidence != want {
		t.Errorf("AverageConfidence = %v, want %v", result.AverageConfidence, want)
	}

	// 600 words: base 0.95 + 0.1 (long) + 0.05 (title len 9) = 1.0 cap
	if result.Chapters[0].Confidence != 1.0 {
		t.Errorf("chapter 1 confidence = %v, want 1.0", result.Chapters[0].Confidence)
	}
	// 80 words: base 0.95 - 0.2 (short) + 0.05 = 0.8
	if diff := result.Chapters[1].Confidence - 0.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("chapter 2 confidence = %v, want 0.8", result.Chapters[1].Confidence)
	}
}

func TestSplitLongChapters_PartCeiling(t *testing.T) {
	// Enough words to overrun the per-part budget more than MaxSubParts
	// times over, so the ceiling has to engage.
	total := 205000
	ch := Chapter{
		Title:      "Chapter 1",
		Content:    sentences(total),
		Type:       "chapter",
		WordCount:  total,
		Confidence: 0.95,
	}

	parts := splitLongChapters([]Chapter{ch})

	if len(parts) != config.MaxSubParts {
		t.Fatalf("len(parts) = %d, want %d", len(parts), config.MaxSubParts)
	}

	sum := 0
	for i, p := range parts {
		sum += p.WordCount
		if i == len(parts)-1 {
			continue
		}
		if p.WordCount > config.SplitWordBudget {
			t.Errorf("part %d word count = %d, want <= %d", i+1, p.WordCount, config.SplitWordBudget)
		}
		if !strings.HasSuffix(p.Content, ".") {
			t.Errorf("part %d does not end on a sentence terminator: %q", i+1, tail(p.Content))
		}
	}
	if sum != total {
		t.Errorf("part word counts sum to %d, want %d", sum, total)
	}

	// The final part absorbs whatever the ceiling cut off, even when
	// that remainder is itself over the budget.
	last := parts[len(parts)-1]
	if last.WordCount <= config.SplitWordBudget {
		t.Errorf("final part word count = %d, want the remainder above %d", last.WordCount, config.SplitWordBudget)
	}

	if parts[0].Title != "Chapter 1" {
		t.Errorf("part 1 title = %q, want %q", parts[0].Title, "Chapter 1")
	}
	if want := fmt.Sprintf("Chapter 1 (Part %d)", config.MaxSubParts); last.Title != want {
		t.Errorf("final part title = %q, want %q", last.Title, want)
	}
}

func titles(r *Result) []string {
	var out []string
	for _, c := range r.Chapters {
		out = append(out, c.Title)
	}
	return out
}

func tail(s string) string {
	if len(s) > 40 {
		return s[len(s)-40:]
	}
	return s
}

func head(s string) string {
	if len(s) > 40 {
		return s[:40]
	}
	return s
}
