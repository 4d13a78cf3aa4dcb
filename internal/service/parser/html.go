package parser

import (
	"context"

	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/domain/models"
)

// htmlConverter sanitizes HTML input. Scripts, styles, event handlers
// and javascript: URLs are removed; structural tags (paragraphs,
// headings, lists, emphasis) pass through.
type htmlConverter struct {
	policy *bluemonday.Policy
}

// NewHTMLConverter creates a new HTML converter.
func NewHTMLConverter() Converter {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()
	return &htmlConverter{policy: policy}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return c.policy.Sanitize(DecodeText(input)), nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Format() string {
	return models.FormatHTML
}
