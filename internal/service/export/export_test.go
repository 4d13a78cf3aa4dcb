package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/service/access"
)

type fakeProjectRepo struct {
	projects map[string]*models.Project
}

func (f *fakeProjectRepo) Create(_ context.Context, p *models.Project) error { return nil }

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProjectRepo) ListByUser(_ context.Context, _ string) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, _ *models.Project) error { return nil }
func (f *fakeProjectRepo) Delete(_ context.Context, _ string) error          { return nil }

func (f *fakeProjectRepo) AddCollaborator(_ context.Context, _ *models.ProjectCollaborator) error {
	return nil
}

func (f *fakeProjectRepo) RemoveCollaborator(_ context.Context, _, _ string) error { return nil }

func (f *fakeProjectRepo) ListCollaborators(_ context.Context, _ string) ([]models.ProjectCollaborator, error) {
	return nil, nil
}

func (f *fakeProjectRepo) GetCollaborator(_ context.Context, _, _ string) (*models.ProjectCollaborator, error) {
	return nil, domain.ErrNotFound
}

type fakeChapterLister struct {
	chapters []models.Chapter
}

func (f *fakeChapterLister) ListByProject(_ context.Context, _ string) ([]models.Chapter, error) {
	return f.chapters, nil
}

func newTestService(chapters []models.Chapter) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	projects := &fakeProjectRepo{projects: map[string]*models.Project{
		"p1": {
			ID:          "p1",
			Title:       "The Long Road",
			Description: "A journey in three acts.",
			AuthorID:    "author-1",
			AuthorName:  "Ada Quill",
		},
	}}
	mediator := access.NewMediator(projects, logger)
	return NewService(&fakeChapterLister{chapters: chapters}, mediator, logger)
}

func sampleChapters() []models.Chapter {
	return []models.Chapter{
		{ID: "c1", ProjectID: "p1", Title: "Setting Out", Content: "<p>The road <em>began</em> at dawn.</p>", Order: 0},
		{ID: "c2", ProjectID: "p1", Title: "The Crossing", Content: "<p>Rivers ran high.</p><p>They crossed anyway.</p>", Order: 1},
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"pdf", "epub", "docx", "html"} {
		if _, err := ParseFormat(valid); err != nil {
			t.Errorf("ParseFormat(%q): %v", valid, err)
		}
	}
	if _, err := ParseFormat("mobi"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ParseFormat(mobi) = %v, want ErrValidation", err)
	}
}

func TestExport_HTML(t *testing.T) {
	svc := newTestService(sampleChapters())

	result, err := svc.Export(context.Background(), "p1", "author-1", FormatHTML)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if result.Filename != "The-Long-Road.html" {
		t.Errorf("filename = %q", result.Filename)
	}
	if result.MimeType != "text/html; charset=utf-8" {
		t.Errorf("mime type = %q", result.MimeType)
	}
	html := string(result.Data)
	for _, want := range []string{
		"<h1>The Long Road</h1>",
		"A journey in three acts.",
		"by Ada Quill",
		"<h2>Setting Out</h2>",
		"<p>The road <em>began</em> at dawn.</p>",
		"<h2>The Crossing</h2>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html output missing %q", want)
		}
	}
	if strings.Index(html, "Setting Out") > strings.Index(html, "The Crossing") {
		t.Error("chapters out of order")
	}
}

func TestExport_PDF(t *testing.T) {
	svc := newTestService(sampleChapters())

	result, err := svc.Export(context.Background(), "p1", "author-1", FormatPDF)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
	if result.Filename != "The-Long-Road.pdf" {
		t.Errorf("filename = %q", result.Filename)
	}
	if bytes.Contains(result.Data, []byte("<em>")) {
		t.Error("markup leaked into PDF output")
	}
}

func TestExport_EPUB(t *testing.T) {
	svc := newTestService(sampleChapters())

	result, err := svc.Export(context.Background(), "p1", "author-1", FormatEPUB)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	// An EPUB is a zip whose first entry is the uncompressed mimetype.
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Error("output is not a zip")
	}
	if !bytes.Contains(result.Data[:100], []byte("application/epub+zip")) {
		t.Error("mimetype entry missing")
	}
	if result.MimeType != "application/epub+zip" {
		t.Errorf("mime type = %q", result.MimeType)
	}
}

func TestExport_DOCX(t *testing.T) {
	svc := newTestService(sampleChapters())

	result, err := svc.Export(context.Background(), "p1", "author-1", FormatDOCX)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(result.Data, []byte("PK")) {
		t.Error("output is not a zip")
	}
	if result.Filename != "The-Long-Road.docx" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestExport_EmptyProjectStillProducesArtifact(t *testing.T) {
	svc := newTestService(nil)

	for _, format := range []Format{FormatPDF, FormatEPUB, FormatDOCX, FormatHTML} {
		result, err := svc.Export(context.Background(), "p1", "author-1", format)
		if err != nil {
			t.Fatalf("Export(%s): %v", format, err)
		}
		if len(result.Data) == 0 {
			t.Errorf("Export(%s) produced empty artifact", format)
		}
	}
}

func TestExport_DeniedForStranger(t *testing.T) {
	svc := newTestService(sampleChapters())

	_, err := svc.Export(context.Background(), "p1", "stranger", FormatHTML)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"The Long Road", "The-Long-Road"},
		{"semi;colons & slashes/", "semicolons--slashes"},
		{"", "project"},
		{"___", "___"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
