package models

import (
	"time"
)

// Chapter is a contiguous piece of rich-text content with a position
// within its project. Order values within a project are dense, unique
// and zero-based: for N chapters they are exactly {0 .. N-1}. The SQL
// column is sort_order; the wire field stays "order".
type Chapter struct {
	ID           string    `json:"id" db:"id"`
	ProjectID    string    `json:"project_id" db:"project_id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"` // HTML body
	Order        int       `json:"order" db:"sort_order"`
	WordCount    int       `json:"word_count" db:"word_count"`
	LastEditedBy *string   `json:"last_edited_by,omitempty" db:"last_edited_by"`
	Published    bool      `json:"published" db:"published"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ChapterSummary is the content-free projection used by chapter
// listings and the reorder UI.
type ChapterSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	WordCount int       `json:"word_count"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary strips the content from a chapter.
func (c *Chapter) Summary() ChapterSummary {
	return ChapterSummary{
		ID:        c.ID,
		Title:     c.Title,
		Order:     c.Order,
		WordCount: c.WordCount,
		Published: c.Published,
		UpdatedAt: c.UpdatedAt,
	}
}
