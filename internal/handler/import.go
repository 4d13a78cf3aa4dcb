package handler

import (
	"io"
	"log/slog"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/service/importer"
)

// ImportHandler handles HTTP requests for document ingestion
type ImportHandler struct {
	importer *importer.Service
	logger   *slog.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *importer.Service, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{importer: importService, logger: logger}
}

// Upload ingests an uploaded file. Optional form values: project_id to
// append detected chapters to a project, segment=true to run chapter
// detection.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Could not read file")
		return
	}

	req := importer.UploadRequest{
		Filename: header.Filename,
		Content:  content,
		Segment:  r.FormValue("segment") == "true",
	}
	if projectID := r.FormValue("project_id"); projectID != "" {
		req.ProjectID = &projectID
	}

	result, err := h.importer.Upload(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}

// List returns the caller's imported documents
func (h *ImportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	imports, err := h.importer.List(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"imports": imports})
}

// Get returns one imported document with its extracted content
func (h *ImportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	imp, err := h.importer.Get(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, imp)
}

// Delete removes an imported-document record
func (h *ImportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	if err := h.importer.Delete(r.Context(), r.PathValue("id"), userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type detectRequest struct {
	Text string `json:"text"`
}

// DetectChapters runs the segmenter over raw text without persisting
// anything. Used by the import preview.
func (h *ImportHandler) DetectChapters(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		httputil.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result := h.importer.Detect(req.Text)

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"chapters":           result.Chapters,
		"chapter_count":      result.ChapterCount,
		"total_words":        result.TotalWords,
		"average_confidence": result.AverageConfidence,
	})
}
