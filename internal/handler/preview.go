package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/repositories"
	"inkwell/internal/httputil"
	"inkwell/internal/service/access"
)

// PreviewHandler serves the read-only payload the device preview
// renders: full chapter content in order plus word statistics.
type PreviewHandler struct {
	chapters repositories.ChapterRepository
	access   *access.Mediator
	logger   *slog.Logger
}

// NewPreviewHandler creates a new preview handler
func NewPreviewHandler(
	chapters repositories.ChapterRepository,
	accessMediator *access.Mediator,
	logger *slog.Logger,
) *PreviewHandler {
	return &PreviewHandler{chapters: chapters, access: accessMediator, logger: logger}
}

type previewChapter struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Order     int    `json:"order"`
	WordCount int    `json:"word_count"`
}

// Get returns the project's chapters with content, in reading order
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	project, err := h.access.RequireView(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	chapters, err := h.chapters.ListByProject(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	totalWords := 0
	out := make([]previewChapter, 0, len(chapters))
	for _, c := range chapters {
		totalWords += c.WordCount
		out = append(out, previewChapter{
			ID:        c.ID,
			Title:     c.Title,
			Content:   c.Content,
			Order:     c.Order,
			WordCount: c.WordCount,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"project": map[string]any{
			"id":     project.ID,
			"title":  project.Title,
			"author": project.AuthorName,
		},
		"chapters":         out,
		"chapter_count":    len(out),
		"total_word_count": totalWords,
	})
}
