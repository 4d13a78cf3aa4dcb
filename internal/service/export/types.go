// Package export renders a project's chapters into downloadable
// artifacts. PDF and DOCX are text renderings with markup stripped;
// EPUB and HTML keep the chapter markup intact.
package export

import (
	"fmt"

	"inkwell/internal/domain"
)

// Format selects the export output format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// ParseFormat validates a format string from the wire.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatEPUB, FormatDOCX, FormatHTML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, s)
	}
}

// Result is a finished export artifact.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// sanitizeFilename reduces a project title to a safe download name.
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		}
	}
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "project"
	}
	return result
}
