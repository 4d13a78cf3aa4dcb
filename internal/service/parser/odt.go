package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// odtConverter extracts paragraphs from an OpenDocument text archive.
// text:h elements keep their outline level as <hN>; text:p becomes <p>.
type odtConverter struct{}

// NewODTConverter creates a new ODT converter.
func NewODTConverter() Converter {
	return &odtConverter{}
}

func (c *odtConverter) Convert(ctx context.Context, input []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("open odt: %w", err)
	}

	content := findZipEntry(zr, "content.xml")
	if content == nil {
		return "", fmt.Errorf("odt has no content.xml: %w", domain.ErrUnsupportedFormat)
	}

	rc, err := content.Open()
	if err != nil {
		return "", fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	return extractODTParagraphs(rc)
}

func (c *odtConverter) SupportedExtensions() []string {
	return []string{".odt"}
}

func (c *odtConverter) Format() string {
	return models.FormatODT
}

func extractODTParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out      strings.Builder
		para     strings.Builder
		depth    int // nesting inside a text:p or text:h
		headingL int
	)

	flush := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		escaped := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
		if headingL > 0 {
			fmt.Fprintf(&out, "<h%d>%s</h%d>", headingL, escaped, headingL)
		} else {
			out.WriteString("<p>" + escaped + "</p>")
		}
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					headingL = 0
				}
				depth++
			case "h":
				if depth == 0 {
					headingL = odtHeadingLevel(xmlAttr(t, "outline-level"))
				}
				depth++
			case "line-break":
				if depth > 0 {
					para.WriteString("\n")
				}
			case "tab", "s":
				if depth > 0 {
					para.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "h":
				depth--
				if depth == 0 {
					flush()
				}
			}
		case xml.CharData:
			if depth > 0 {
				para.Write(t)
			}
		}
	}

	return out.String(), nil
}

// odtHeadingLevel clamps text:outline-level to 1..6, defaulting to 1.
func odtHeadingLevel(attr string) int {
	level, err := strconv.Atoi(attr)
	if err != nil || level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
