package models

import (
	"time"
)

// Document is a standalone rich-text artifact owned by one user,
// independent of any project. It carries the same word-count invariant
// as Chapter: word_count = whitespace-separated tokens of the content
// with HTML stripped.
type Document struct {
	ID         string    `json:"id" db:"id"`
	OwnerID    string    `json:"owner_id" db:"owner_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"` // HTML body
	WordCount  int       `json:"word_count" db:"word_count"`
	SharedWith []string  `json:"shared_with,omitempty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Source format tags for imported documents.
const (
	FormatPDF         = "pdf"
	FormatDOCX        = "docx"
	FormatTXT         = "txt"
	FormatRTF         = "rtf"
	FormatODT         = "odt"
	FormatHTML        = "html"
	FormatExternalDoc = "external-doc"
)

// ImportedDocument records an upload (or remote document reference)
// and its extracted rich-text content. Exactly one of FileRef and
// SourceURL is set.
type ImportedDocument struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ProjectID *string   `json:"project_id,omitempty" db:"project_id"`
	Title     string    `json:"title" db:"title"`
	FileRef   *string   `json:"file_ref,omitempty" db:"file_ref"`
	SourceURL *string   `json:"source_url,omitempty" db:"source_url"`
	Format    string    `json:"format" db:"format"`
	Content   string    `json:"content" db:"content"`
	FileSize  int64     `json:"file_size" db:"file_size"`
	WordCount int       `json:"word_count" db:"word_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
