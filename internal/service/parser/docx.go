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
	"strings"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// docxConverter extracts paragraphs from the WordprocessingML body of
// a .docx archive. Paragraphs styled HeadingN become <hN>; everything
// else becomes <p>.
type docxConverter struct{}

// NewDocxConverter creates a new DOCX converter.
func NewDocxConverter() Converter {
	return &docxConverter{}
}

func (c *docxConverter) Convert(ctx context.Context, input []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	doc := findZipEntry(zr, "word/document.xml")
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml: %w", domain.ErrUnsupportedFormat)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	return extractWordParagraphs(rc)
}

func (c *docxConverter) SupportedExtensions() []string {
	return []string{".docx"}
}

func (c *docxConverter) Format() string {
	return models.FormatDOCX
}

func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// extractWordParagraphs walks WordprocessingML tokens. Only w:p, w:t,
// w:br, w:tab and the pStyle heading marker matter; the rest of the
// vocabulary is skipped.
func extractWordParagraphs(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out      strings.Builder
		para     strings.Builder
		inPara   bool
		inText   bool
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
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				headingL = 0
			case "pStyle":
				if inPara {
					headingL = headingLevel(xmlAttr(t, "val"))
				}
			case "t":
				inText = true
			case "br", "cr":
				if inPara {
					para.WriteString("\n")
				}
			case "tab":
				if inPara {
					para.WriteString(" ")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					flush()
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inPara && inText {
				para.Write(t)
			}
		}
	}

	if inPara {
		flush()
	}

	return out.String(), nil
}

// headingLevel maps Word style ids (Heading1..Heading6, Title) to an
// HTML heading level, or 0 for body text.
func headingLevel(style string) int {
	if style == "Title" {
		return 1
	}
	if !strings.HasPrefix(style, "Heading") {
		return 0
	}
	rest := strings.TrimPrefix(style, "Heading")
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

func xmlAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
