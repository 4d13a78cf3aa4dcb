// Package importer ingests uploaded manuscripts: the file is parsed to
// rich text, optionally segmented into chapters, and recorded as an
// ImportedDocument. When an upload targets a project the detected
// chapters are appended to it through the ordering engine.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/htmltext"
	"inkwell/internal/service/access"
	"inkwell/internal/service/ordering"
	"inkwell/internal/service/parser"
	"inkwell/internal/service/segmenter"
)

// allowedExtensions is the upload whitelist. Anything else is rejected
// before the file reaches a converter.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
	".html": true,
	".htm":  true,
}

// Service runs the upload pipeline.
type Service struct {
	imports   repositories.ImportRepository
	parser    *parser.Registry
	segmenter *segmenter.Segmenter
	engine    *ordering.Engine
	access    *access.Mediator
	logger    *slog.Logger
}

// NewService creates a new import service
func NewService(
	imports repositories.ImportRepository,
	parserRegistry *parser.Registry,
	seg *segmenter.Segmenter,
	engine *ordering.Engine,
	accessMediator *access.Mediator,
	logger *slog.Logger,
) *Service {
	return &Service{
		imports:   imports,
		parser:    parserRegistry,
		segmenter: seg,
		engine:    engine,
		access:    accessMediator,
		logger:    logger,
	}
}

// UploadRequest is one file upload. ProjectID targets a project for
// chapter creation; Segment controls whether the content is split into
// chapters at all.
type UploadRequest struct {
	Filename  string
	Content   []byte
	ProjectID *string
	Segment   bool
}

// UploadResult reports what the pipeline produced.
type UploadResult struct {
	ImportID  string                  `json:"import_id"`
	Title     string                  `json:"title"`
	Format    string                  `json:"format"`
	WordCount int                     `json:"word_count"`
	Chapters  []models.ChapterSummary `json:"chapters,omitempty"`
	Detected  *segmenter.Result       `json:"detected,omitempty"`
}

// Upload validates, parses and records an uploaded file.
func (s *Service) Upload(ctx context.Context, userID string, req UploadRequest) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: extension %q", domain.ErrUnsupportedFormat, ext)
	}
	if int64(len(req.Content)) > config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, config.MaxUploadBytes)
	}

	content, format, err := s.parser.Convert(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}

	title := strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	if title == "" {
		title = "Imported document"
	}

	result := &UploadResult{
		ImportID:  uuid.NewString(),
		Title:     title,
		Format:    format,
		WordCount: htmltext.CountWords(content),
	}

	if req.Segment {
		detected := s.segmentContent(content)
		result.Detected = detected
		if req.ProjectID != nil {
			created, err := s.appendChapters(ctx, *req.ProjectID, userID, detected.Chapters)
			if err != nil {
				return nil, err
			}
			result.Chapters = created
		}
	}

	fileRef := filepath.Base(req.Filename)
	record := &models.ImportedDocument{
		ID:        result.ImportID,
		UserID:    userID,
		ProjectID: req.ProjectID,
		Title:     title,
		FileRef:   &fileRef,
		Format:    format,
		Content:   content,
		FileSize:  int64(len(req.Content)),
		WordCount: result.WordCount,
	}
	if err := s.imports.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	s.logger.Info("document imported",
		"import_id", record.ID,
		"user_id", userID,
		"format", format,
		"bytes", record.FileSize,
		"chapters", len(result.Chapters))
	return result, nil
}

// htmlHeadingRe spots heading tags the segmenter can anchor on.
var htmlHeadingRe = regexp.MustCompile(`(?i)<h[1-3][\s>]`)

// segmentContent picks the segmentation input. Heading-bearing HTML is
// segmented as-is; anything else is segmented as stripped text, since
// the line-anchored patterns need real line breaks, and each detected
// chapter is wrapped back into paragraph HTML.
func (s *Service) segmentContent(content string) *segmenter.Result {
	if htmlHeadingRe.MatchString(content) {
		return s.segmenter.Segment(content)
	}
	detected := s.segmenter.Segment(htmltext.StripTags(content))
	for i := range detected.Chapters {
		detected.Chapters[i].Content = parser.TextToHTML(detected.Chapters[i].Content)
	}
	return detected
}

func (s *Service) appendChapters(ctx context.Context, projectID, userID string, detected []segmenter.Chapter) ([]models.ChapterSummary, error) {
	if _, err := s.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}

	summaries := make([]models.ChapterSummary, 0, len(detected))
	for _, dc := range detected {
		chapter := &models.Chapter{
			ID:           uuid.NewString(),
			ProjectID:    projectID,
			Title:        dc.Title,
			Content:      dc.Content,
			WordCount:    dc.WordCount,
			LastEditedBy: &userID,
		}
		if err := s.engine.Append(ctx, chapter); err != nil {
			return nil, fmt.Errorf("append chapter %q: %w", dc.Title, err)
		}
		summaries = append(summaries, chapter.Summary())
	}
	return summaries, nil
}

// Detect runs segmentation over raw text without persisting anything.
func (s *Service) Detect(text string) *segmenter.Result {
	return s.segmenter.Segment(text)
}

// List returns the caller's import records, newest first, without
// their extracted content.
func (s *Service) List(ctx context.Context, userID string) ([]models.ImportedDocument, error) {
	return s.imports.ListByUser(ctx, userID)
}

// Get returns one import record including its content.
func (s *Service) Get(ctx context.Context, id, userID string) (*models.ImportedDocument, error) {
	return s.imports.GetByID(ctx, id, userID)
}

// Delete removes an import record.
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	return s.imports.Delete(ctx, id, userID)
}
