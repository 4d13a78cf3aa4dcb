package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"inkwell/internal/httputil"
	"inkwell/internal/service/editor"
)

// EditorHandler exposes the editor's multiplexed action endpoint. The
// client sends a JSON body with an "action" field naming the operation;
// file uploads arrive as multipart forms instead.
type EditorHandler struct {
	editor *editor.Controller
	logger *slog.Logger
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorController *editor.Controller, logger *slog.Logger) *EditorHandler {
	return &EditorHandler{editor: editorController, logger: logger}
}

// editorRequest is the union of every action's fields. Each action
// reads only the fields it needs.
type editorRequest struct {
	Action string `json:"action"`

	ChapterID        *string  `json:"chapter_id,omitempty"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	HeadingLevel     int      `json:"heading_level"`
	ChapterIDs       []string `json:"chapter_ids"`
	FirstPart        string   `json:"first_part"`
	RemainingPart    string   `json:"remaining_part"`
	ContentBefore    string   `json:"content_before"`
	ContentAfter     string   `json:"content_after"`
	SelectedText     string   `json:"selected_text"`
	RemoveFromSource bool     `json:"remove_from_source"`
}

func respondSuccess(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	httputil.RespondJSON(w, status, body)
}

// Handle dispatches one editor action
func (h *EditorHandler) Handle(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		h.handleUpload(w, r, projectID, userID)
		return
	}

	var req editorRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	action := editor.CanonicalAction(req.Action)
	h.logger.Debug("editor action", "action", action, "project_id", projectID, "user_id", userID)

	switch action {
	case "save_chapter":
		chapter, err := h.editor.SaveChapter(r.Context(), projectID, userID, editor.SaveChapterRequest{
			ChapterID: req.ChapterID,
			Title:     req.Title,
			Content:   req.Content,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, map[string]any{"chapter": chapter})

	case "publish_chapter":
		chapter, err := h.editor.PublishChapter(r.Context(), projectID, userID, editor.SaveChapterRequest{
			ChapterID: req.ChapterID,
			Title:     req.Title,
			Content:   req.Content,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, map[string]any{"chapter": chapter})

	case "create_chapter":
		chapter, err := h.editor.CreateChapter(r.Context(), projectID, userID, editor.CreateChapterRequest{
			Title:        req.Title,
			HeadingLevel: req.HeadingLevel,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, map[string]any{"chapter": chapter})

	case "delete_chapter":
		if req.ChapterID == nil {
			httputil.RespondError(w, http.StatusBadRequest, "chapter_id is required")
			return
		}
		if err := h.editor.DeleteChapter(r.Context(), projectID, userID, *req.ChapterID); err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, nil)

	case "reorder":
		if err := h.editor.Reorder(r.Context(), projectID, userID, req.ChapterIDs); err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusOK, nil)

	case "split_long_chapter":
		if req.ChapterID == nil {
			httputil.RespondError(w, http.StatusBadRequest, "chapter_id is required")
			return
		}
		chapter, err := h.editor.SplitLongChapter(r.Context(), projectID, userID, *req.ChapterID, req.FirstPart, req.RemainingPart)
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, map[string]any{"chapter": chapter})

	case "create_chapter_from_heading":
		if req.ChapterID == nil {
			httputil.RespondError(w, http.StatusBadRequest, "chapter_id is required")
			return
		}
		chapter, err := h.editor.CreateChapterFromHeading(r.Context(), projectID, userID, editor.CreateFromHeadingRequest{
			ChapterID:     *req.ChapterID,
			Title:         req.Title,
			ContentBefore: req.ContentBefore,
			ContentAfter:  req.ContentAfter,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, map[string]any{"chapter": chapter})

	case "create_from_selection":
		if req.ChapterID == nil {
			httputil.RespondError(w, http.StatusBadRequest, "chapter_id is required")
			return
		}
		chapter, err := h.editor.CreateFromSelection(r.Context(), projectID, userID, editor.CreateFromSelectionRequest{
			ChapterID:        *req.ChapterID,
			Title:            req.Title,
			SelectedText:     req.SelectedText,
			RemoveFromSource: req.RemoveFromSource,
		})
		if err != nil {
			handleError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, map[string]any{"chapter": chapter})

	default:
		httputil.RespondError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
	}
}

// handleUpload serves the upload_to_editor action: parse the file and
// hand the rich text back without touching the project.
func (h *EditorHandler) handleUpload(w http.ResponseWriter, r *http.Request, projectID, userID string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
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

	result, err := h.editor.UploadToEditor(r.Context(), projectID, userID, header.Filename, content)
	if err != nil {
		handleError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]any{
		"html":       result.HTML,
		"format":     result.Format,
		"word_count": result.WordCount,
	})
}
