package export

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/domain/models"
	"inkwell/internal/service/access"
)

// ChapterLister is the slice of the chapter repository the export
// pipeline needs: chapters in reading order, content included.
type ChapterLister interface {
	ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error)
}

// Service loads a project's chapters and renders them in the
// requested format. Viewing rights are enough to export.
type Service struct {
	chapters ChapterLister
	access   *access.Mediator
	logger   *slog.Logger
}

// NewService creates a new export service
func NewService(chapters ChapterLister, accessMediator *access.Mediator, logger *slog.Logger) *Service {
	return &Service{chapters: chapters, access: accessMediator, logger: logger}
}

// book is the assembled input every renderer consumes. Chapters are in
// reading order; an empty slice still produces a title-page-only
// artifact.
type book struct {
	Project  *models.Project
	Chapters []models.Chapter
}

// Export renders the project for the given user. Format selects the
// renderer; everything else is shared.
func (s *Service) Export(ctx context.Context, projectID, userID string, format Format) (*Result, error) {
	project, err := s.access.RequireView(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.chapters.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	b := &book{Project: project, Chapters: chapters}

	var result *Result
	switch format {
	case FormatPDF:
		result, err = renderPDF(b)
	case FormatEPUB:
		result, err = renderEPUB(b)
	case FormatDOCX:
		result, err = renderDOCX(b)
	case FormatHTML:
		result, err = renderHTML(b)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	s.logger.Info("project exported",
		"project_id", projectID,
		"format", format,
		"chapters", len(chapters),
		"bytes", len(result.Data))
	return result, nil
}
