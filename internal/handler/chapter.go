package handler

import (
	"log/slog"
	"net/http"

	"inkwell/internal/domain/repositories"
	"inkwell/internal/httputil"
	"inkwell/internal/service/access"
	"inkwell/internal/service/editor"
	"inkwell/internal/service/ordering"
)

// ChapterHandler handles HTTP requests for chapter listing and ordering
type ChapterHandler struct {
	chapters repositories.ChapterRepository
	engine   *ordering.Engine
	editor   *editor.Controller
	access   *access.Mediator
	logger   *slog.Logger
}

// NewChapterHandler creates a new chapter handler
func NewChapterHandler(
	chapters repositories.ChapterRepository,
	engine *ordering.Engine,
	editorController *editor.Controller,
	accessMediator *access.Mediator,
	logger *slog.Logger,
) *ChapterHandler {
	return &ChapterHandler{
		chapters: chapters,
		engine:   engine,
		editor:   editorController,
		access:   accessMediator,
		logger:   logger,
	}
}

// List returns the project's chapters in order, without content, plus
// the aggregate totals the sidebar shows.
func (h *ChapterHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireView(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	summaries, err := h.engine.Sequence(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}
	totalWords, err := h.chapters.TotalWords(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"chapters":           summaries,
		"total_chapters":     len(summaries),
		"project_word_count": totalWords,
	})
}

// Get returns one chapter with its content
func (h *ChapterHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	chapterID := r.PathValue("chapterID")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireView(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	chapter, err := h.chapters.GetByID(r.Context(), chapterID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chapter)
}

// Create appends a chapter to the end of the project
func (h *ChapterHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	var req editor.SaveChapterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ChapterID = nil

	chapter, err := h.editor.SaveChapter(r.Context(), projectID, userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, chapter)
}

type reorderRequest struct {
	ChapterIDs []string `json:"chapter_ids"`
}

// Reorder applies a full permutation of the project's chapters
func (h *ChapterHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	var req reorderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.editor.Reorder(r.Context(), projectID, userID, req.ChapterIDs); err != nil {
		handleError(w, err)
		return
	}

	summaries, err := h.engine.Sequence(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"chapters": summaries})
}

type moveRequest struct {
	Position int `json:"position"`
}

// Move places one chapter at an explicit position
func (h *ChapterHandler) Move(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	chapterID := r.PathValue("chapterID")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireEdit(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	var req moveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.Move(r.Context(), projectID, chapterID, req.Position); err != nil {
		handleError(w, err)
		return
	}

	summaries, err := h.engine.Sequence(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"chapters": summaries})
}

// Delete removes a chapter and closes the ordering gap
func (h *ChapterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	chapterID := r.PathValue("chapterID")
	userID := httputil.GetUserID(r)

	if err := h.editor.DeleteChapter(r.Context(), projectID, userID, chapterID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
