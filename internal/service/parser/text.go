package parser

import (
	"context"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"inkwell/internal/domain/models"
)

// textConverter turns plain text into paragraph HTML. Input is decoded
// as UTF-8 when valid, otherwise as Latin-1, which cannot fail.
type textConverter struct{}

// NewTextConverter creates a new plain-text converter.
func NewTextConverter() Converter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return TextToHTML(DecodeText(input)), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text", ".doc"}
}

func (c *textConverter) Format() string {
	return models.FormatTXT
}

// DecodeText decodes bytes as UTF-8 with a Latin-1 fallback.
func DecodeText(input []byte) string {
	if utf8.Valid(input) {
		return string(input)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(input)
	if err != nil {
		// Latin-1 decoding maps every byte; unreachable in practice
		return string(input)
	}
	return string(decoded)
}

// TextToHTML renders plain text as HTML. Blank lines separate
// paragraphs; single line breaks inside a paragraph become <br>.
func TextToHTML(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	for _, block := range strings.Split(text, "\n\n") {
		lines := make([]string, 0, 4)
		for _, line := range strings.Split(block, "\n") {
			if trimmed := strings.TrimRight(line, " \t"); trimmed != "" {
				lines = append(lines, html.EscapeString(trimmed))
			}
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
