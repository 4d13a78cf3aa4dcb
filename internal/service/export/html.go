package export

import (
	"bytes"
	"html/template"
)

// bookTemplate is a standalone page: a title block followed by each
// chapter's markup as authored.
const bookTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Project.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.7; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
    .title-page { text-align: center; margin: 6rem 0; }
    .title-page h1 { font-size: 2.4em; margin-bottom: 0.3em; }
    .title-page .description { font-style: italic; color: #444; }
    .title-page .byline { margin-top: 2rem; }
    .chapter { page-break-before: always; margin-top: 4rem; }
    .chapter h2 { border-bottom: 1px solid #ccc; padding-bottom: 0.4rem; }
  </style>
</head>
<body>
  <div class="title-page">
    <h1>{{.Project.Title}}</h1>
    {{if .Project.Description}}<p class="description">{{.Project.Description}}</p>{{end}}
    <p class="byline">by {{.Project.AuthorName}}</p>
  </div>
  {{range .Chapters}}
  <div class="chapter">
    <h2>{{.Title}}</h2>
    {{.Content | safeHTML}}
  </div>
  {{end}}
</body>
</html>`

var htmlTemplate = template.Must(template.New("book").Funcs(template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}).Parse(bookTemplate))

func renderHTML(b *book) (*Result, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, b); err != nil {
		return nil, err
	}
	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(b.Project.Title) + ".html",
		MimeType: "text/html; charset=utf-8",
	}, nil
}
