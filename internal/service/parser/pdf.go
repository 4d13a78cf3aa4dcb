package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"inkwell/internal/domain/models"
)

// pdfConverter extracts text page by page. Image-only PDFs legally
// yield an empty result; only a structurally broken file is an error.
type pdfConverter struct{}

// NewPDFConverter creates a new PDF converter.
func NewPDFConverter() Converter {
	return &pdfConverter{}
}

func (c *pdfConverter) Convert(ctx context.Context, input []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One undecodable page should not sink the rest
			slog.Debug("pdf page extraction failed", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		b.WriteString(TextToHTML(text))
	}

	return b.String(), nil
}

func (c *pdfConverter) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (c *pdfConverter) Format() string {
	return models.FormatPDF
}
