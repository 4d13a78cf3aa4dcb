package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"inkwell/internal/htmltext"
)

// renderPDF lays out the book with the core fonts: markup is stripped
// and each chapter starts on a fresh page after a centered title page.
func renderPDF(b *book) (*Result, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(b.Project.Title, true)
	pdf.SetAuthor(b.Project.AuthorName, true)
	pdf.SetMargins(20, 25, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.Ln(60)
	pdf.SetFont("Times", "B", 28)
	pdf.MultiCell(0, 12, tr(b.Project.Title), "", "C", false)
	if b.Project.Description != "" {
		pdf.Ln(8)
		pdf.SetFont("Times", "I", 13)
		pdf.MultiCell(0, 7, tr(b.Project.Description), "", "C", false)
	}
	pdf.Ln(16)
	pdf.SetFont("Times", "", 13)
	pdf.CellFormat(0, 8, tr("by "+b.Project.AuthorName), "", 1, "C", false, 0, "")

	for _, chapter := range b.Chapters {
		pdf.AddPage()
		pdf.SetFont("Times", "B", 17)
		pdf.MultiCell(0, 9, tr(chapter.Title), "", "L", false)
		pdf.Ln(4)
		pdf.SetFont("Times", "", 12)
		for _, para := range htmltext.Paragraphs(chapter.Content) {
			pdf.MultiCell(0, 6, tr(para), "", "L", false)
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(b.Project.Title) + ".pdf",
		MimeType: "application/pdf",
	}, nil
}
