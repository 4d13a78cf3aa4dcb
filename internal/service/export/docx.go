package export

import (
	"bytes"

	"github.com/fumiama/go-docx"

	"inkwell/internal/htmltext"
)

// renderDOCX writes the stripped chapter text. Word paragraph sizes
// are half-points, so "48" is a 24pt title.
func renderDOCX(b *book) (*Result, error) {
	doc := docx.New().WithDefaultTheme()

	title := doc.AddParagraph().Justification("center")
	title.AddText(b.Project.Title).Size("48").Bold()
	if b.Project.Description != "" {
		desc := doc.AddParagraph().Justification("center")
		desc.AddText(b.Project.Description).Size("24").Italic()
	}
	byline := doc.AddParagraph().Justification("center")
	byline.AddText("by " + b.Project.AuthorName).Size("24")

	for _, chapter := range b.Chapters {
		doc.AddParagraph().AddPageBreaks()
		heading := doc.AddParagraph()
		heading.AddText(chapter.Title).Size("32").Bold()
		for _, para := range htmltext.Paragraphs(chapter.Content) {
			doc.AddParagraph().AddText(para)
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(b.Project.Title) + ".docx",
		MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}, nil
}
