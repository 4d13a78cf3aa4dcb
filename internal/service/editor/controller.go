// Package editor implements the chapter-level editing operations the
// writing surface exposes: saving, creating, splitting and publishing
// chapters. Every mutation goes through the ordering engine so chapter
// positions stay dense, and through the access mediator so only users
// with edit rights get in.
package editor

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/htmltext"
	"inkwell/internal/service/access"
	"inkwell/internal/service/ordering"
	"inkwell/internal/service/parser"
)

// actionAliases maps legacy action names kept for older clients onto
// their canonical forms.
var actionAliases = map[string]string{
	"save":            "save_chapter",
	"save_to_library": "publish_chapter",
}

// CanonicalAction resolves an editor action name, folding legacy
// aliases into the canonical operation.
func CanonicalAction(name string) string {
	if canonical, ok := actionAliases[name]; ok {
		return canonical
	}
	return name
}

// Controller coordinates chapter edits on behalf of the editor UI.
type Controller struct {
	chapters repositories.ChapterRepository
	access   *access.Mediator
	engine   *ordering.Engine
	parser   *parser.Registry
	logger   *slog.Logger
}

// NewController creates a new editor controller
func NewController(
	chapters repositories.ChapterRepository,
	accessMediator *access.Mediator,
	engine *ordering.Engine,
	parserRegistry *parser.Registry,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		chapters: chapters,
		access:   accessMediator,
		engine:   engine,
		parser:   parserRegistry,
		logger:   logger,
	}
}

// SaveChapterRequest carries one save from the editor. A nil ChapterID
// means create-and-append.
type SaveChapterRequest struct {
	ChapterID *string `json:"chapter_id,omitempty"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
}

func (r SaveChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
	)
}

// SaveChapter updates an existing chapter or appends a new one, then
// normalizes the project's ordering. The cached word count is always
// recomputed from the content being saved.
func (c *Controller) SaveChapter(ctx context.Context, projectID, userID string, req SaveChapterRequest) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	chapter, err := c.upsert(ctx, projectID, userID, req, false)
	if err != nil {
		return nil, err
	}
	if err := c.engine.Normalize(ctx, projectID); err != nil {
		return nil, fmt.Errorf("normalize after save: %w", err)
	}
	return chapter, nil
}

// PublishChapter saves a chapter like SaveChapter and marks it
// published in the same write.
func (c *Controller) PublishChapter(ctx context.Context, projectID, userID string, req SaveChapterRequest) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	chapter, err := c.upsert(ctx, projectID, userID, req, true)
	if err != nil {
		return nil, err
	}
	if err := c.engine.Normalize(ctx, projectID); err != nil {
		return nil, fmt.Errorf("normalize after publish: %w", err)
	}
	return chapter, nil
}

func (c *Controller) upsert(ctx context.Context, projectID, userID string, req SaveChapterRequest, publish bool) (*models.Chapter, error) {
	wordCount := htmltext.CountWords(req.Content)

	if req.ChapterID == nil || *req.ChapterID == "" {
		chapter := &models.Chapter{
			ID:           uuid.NewString(),
			ProjectID:    projectID,
			Title:        req.Title,
			Content:      req.Content,
			WordCount:    wordCount,
			LastEditedBy: &userID,
			Published:    publish,
		}
		if err := c.engine.Append(ctx, chapter); err != nil {
			return nil, err
		}
		c.logger.Info("chapter created", "project_id", projectID, "chapter_id", chapter.ID, "user_id", userID)
		return chapter, nil
	}

	chapter, err := c.chapters.GetByID(ctx, *req.ChapterID, projectID)
	if err != nil {
		return nil, err
	}
	chapter.Title = req.Title
	chapter.Content = req.Content
	chapter.WordCount = wordCount
	chapter.LastEditedBy = &userID
	if publish {
		chapter.Published = true
	}
	chapter.UpdatedAt = time.Now()
	if err := c.chapters.Update(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// CreateChapterRequest names a new empty chapter and the heading level
// its seed content uses.
type CreateChapterRequest struct {
	Title        string `json:"title"`
	HeadingLevel int    `json:"heading_level"`
}

func (r CreateChapterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.HeadingLevel, validation.Min(1), validation.Max(6)),
	)
}

// CreateChapter appends an empty chapter whose content is seeded with
// the title as a heading followed by an empty paragraph.
func (c *Controller) CreateChapter(ctx context.Context, projectID, userID string, req CreateChapterRequest) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	level := req.HeadingLevel
	if level == 0 {
		level = 1
	}

	chapter := &models.Chapter{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		Title:        req.Title,
		Content:      fmt.Sprintf("<h%d>%s</h%d><p></p>", level, html.EscapeString(req.Title), level),
		LastEditedBy: &userID,
	}
	chapter.WordCount = htmltext.CountWords(chapter.Content)
	if err := c.engine.Append(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// DeleteChapter removes a chapter and closes the ordering gap.
func (c *Controller) DeleteChapter(ctx context.Context, projectID, userID, chapterID string) error {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return err
	}
	return c.engine.Delete(ctx, projectID, chapterID)
}

// Reorder applies a full permutation of the project's chapters.
func (c *Controller) Reorder(ctx context.Context, projectID, userID string, orderedIDs []string) error {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return err
	}
	return c.engine.Reorder(ctx, projectID, orderedIDs)
}

// SplitLongChapter replaces a chapter's body with its first part and
// inserts a sibling holding the remainder directly after it. Both
// writes happen atomically.
func (c *Controller) SplitLongChapter(ctx context.Context, projectID, userID, chapterID, firstPart, remainingPart string) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	source, err := c.chapters.GetByID(ctx, chapterID, projectID)
	if err != nil {
		return nil, err
	}

	part := &models.Chapter{
		ID:           uuid.NewString(),
		Title:        source.Title + " (continued)",
		Content:      remainingPart,
		LastEditedBy: &userID,
	}
	if err := c.engine.SplitInto(ctx, projectID, chapterID, firstPart, part); err != nil {
		return nil, err
	}
	c.logger.Info("chapter split", "project_id", projectID, "chapter_id", chapterID, "new_chapter_id", part.ID)
	return part, nil
}

// CreateFromHeadingRequest splits an open chapter at a heading the
// user placed in the middle of it.
type CreateFromHeadingRequest struct {
	ChapterID     string `json:"chapter_id"`
	Title         string `json:"title"`
	ContentBefore string `json:"content_before"`
	ContentAfter  string `json:"content_after"`
}

func (r CreateFromHeadingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChapterID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
	)
}

// CreateChapterFromHeading keeps the content before the heading in the
// current chapter and starts a new chapter at the heading, seeded with
// the heading itself and everything after it.
func (c *Controller) CreateChapterFromHeading(ctx context.Context, projectID, userID string, req CreateFromHeadingRequest) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	chapter := &models.Chapter{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Content:      fmt.Sprintf("<h2>%s</h2>%s", html.EscapeString(req.Title), req.ContentAfter),
		LastEditedBy: &userID,
	}
	if err := c.engine.SplitInto(ctx, projectID, req.ChapterID, req.ContentBefore, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// CreateFromSelectionRequest lifts a selected passage out of a chapter
// into a new one.
type CreateFromSelectionRequest struct {
	ChapterID        string `json:"chapter_id"`
	Title            string `json:"title"`
	SelectedText     string `json:"selected_text"`
	RemoveFromSource bool   `json:"remove_from_source"`
}

func (r CreateFromSelectionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ChapterID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.SelectedText, validation.Required),
	)
}

// CreateFromSelection copies the selected text into a new chapter
// placed right after the source, optionally removing the selection
// from the source.
func (c *Controller) CreateFromSelection(ctx context.Context, projectID, userID string, req CreateFromSelectionRequest) (*models.Chapter, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}

	chapter := &models.Chapter{
		ID:           uuid.NewString(),
		Title:        req.Title,
		LastEditedBy: &userID,
	}
	if err := c.engine.Extract(ctx, projectID, req.ChapterID, req.SelectedText, chapter, req.RemoveFromSource); err != nil {
		return nil, err
	}
	return chapter, nil
}

// UploadResult is the parsed form of a file dropped into the editor.
type UploadResult struct {
	HTML      string `json:"html"`
	Format    string `json:"format"`
	WordCount int    `json:"word_count"`
}

// UploadToEditor converts an uploaded file to editor HTML without
// mutating the project. The caller decides what to do with the result;
// the project still gates who may drive its editor.
func (c *Controller) UploadToEditor(ctx context.Context, projectID, userID, filename string, content []byte) (*UploadResult, error) {
	if _, err := c.access.RequireEdit(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if len(content) > config.MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, config.MaxUploadBytes)
	}
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrValidation)
	}

	htmlBody, format, err := c.parser.Convert(ctx, filename, content)
	if err != nil {
		return nil, err
	}
	return &UploadResult{
		HTML:      htmlBody,
		Format:    format,
		WordCount: htmltext.CountWords(htmlBody),
	}, nil
}
