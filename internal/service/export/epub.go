package export

import (
	"bytes"
	"fmt"
	"html"

	epub "github.com/go-shiori/go-epub"
)

// renderEPUB keeps the chapter markup as authored. Metadata carries
// the project id so re-exports of the same project share an identity.
func renderEPUB(b *book) (*Result, error) {
	e, err := epub.NewEpub(b.Project.Title)
	if err != nil {
		return nil, err
	}
	e.SetAuthor(b.Project.AuthorName)
	e.SetIdentifier(fmt.Sprintf("project_%s", b.Project.ID))
	e.SetLang("en")
	if b.Project.Description != "" {
		e.SetDescription(b.Project.Description)
	}

	titlePage := fmt.Sprintf(
		`<div style="text-align: center; margin-top: 30%%;"><h1>%s</h1>%s<p>by %s</p></div>`,
		html.EscapeString(b.Project.Title),
		descriptionBlock(b.Project.Description),
		html.EscapeString(b.Project.AuthorName),
	)
	if _, err := e.AddSection(titlePage, b.Project.Title, "titlepage.xhtml", ""); err != nil {
		return nil, fmt.Errorf("add title page: %w", err)
	}

	for i, chapter := range b.Chapters {
		body := fmt.Sprintf("<h1>%s</h1>%s", html.EscapeString(chapter.Title), chapter.Content)
		filename := fmt.Sprintf("chapter_%03d.xhtml", i+1)
		if _, err := e.AddSection(body, chapter.Title, filename, ""); err != nil {
			return nil, fmt.Errorf("add chapter %d: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if _, err := e.WriteTo(&buf); err != nil {
		return nil, err
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(b.Project.Title) + ".epub",
		MimeType: "application/epub+zip",
	}, nil
}

func descriptionBlock(description string) string {
	if description == "" {
		return ""
	}
	return fmt.Sprintf("<p><em>%s</em></p>", html.EscapeString(description))
}
