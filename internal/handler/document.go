package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/htmltext"
	"inkwell/internal/httputil"
)

// DocumentHandler handles HTTP requests for standalone documents,
// which live outside any project and carry their own share set.
type DocumentHandler struct {
	documents repositories.DocumentRepository
	logger    *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents repositories.DocumentRepository, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, logger: logger}
}

type documentRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// List returns the caller's own documents plus those shared with them
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	owned, err := h.documents.ListByOwner(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	shared, err := h.documents.ListSharedWith(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"documents": owned,
		"shared":    shared,
	})
}

// Create creates a new document owned by the caller
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req documentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == nil {
		httputil.RespondError(w, http.StatusBadRequest, "title: cannot be blank")
		return
	}
	if err := validation.Validate(*req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "title: "+err.Error())
		return
	}

	now := time.Now()
	doc := &models.Document{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Title:     *req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	doc.WordCount = htmltext.CountWords(doc.Content)

	if err := h.documents.Create(r.Context(), doc); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// load fetches a document and enforces read access: the owner or a
// user it is shared with.
func (h *DocumentHandler) load(r *http.Request, docID, userID string) (*models.Document, error) {
	doc, err := h.documents.GetByID(r.Context(), docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID == userID {
		return doc, nil
	}
	shared, err := h.documents.IsSharedWith(r.Context(), docID, userID)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, fmt.Errorf("document %s: %w", docID, domain.ErrForbidden)
	}
	return doc, nil
}

// Get returns one document
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	doc, err := h.load(r, docID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Update applies a partial update. The owner and users the document is
// shared with may write; the word count is recomputed on every save.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	doc, err := h.load(r, docID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	var req documentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > config.MaxTitleLength {
			httputil.RespondError(w, http.StatusBadRequest, "title must be between 1 and 300 characters")
			return
		}
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
		doc.WordCount = htmltext.CountWords(doc.Content)
	}
	doc.UpdatedAt = time.Now()

	if err := h.documents.Update(r.Context(), doc); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document. Owner only.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if err := h.documents.Delete(r.Context(), docID, userID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type shareRequest struct {
	UserID string `json:"user_id"`
}

// Share grants another user access to the document. Owner only.
func (h *DocumentHandler) Share(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	doc, err := h.documents.GetByID(r.Context(), docID)
	if err != nil {
		handleError(w, err)
		return
	}
	if doc.OwnerID != userID {
		handleError(w, fmt.Errorf("document %s: %w", docID, domain.ErrForbidden))
		return
	}

	var req shareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.UserID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	if err := h.documents.Share(r.Context(), docID, req.UserID); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("document shared", "document_id", docID, "with_user", req.UserID)
	httputil.RespondJSON(w, http.StatusOK, map[string]any{"document_id": docID, "shared_with": req.UserID})
}

// Unshare revokes a user's access. Owner only.
func (h *DocumentHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	targetID := r.PathValue("userID")
	userID := httputil.GetUserID(r)

	doc, err := h.documents.GetByID(r.Context(), docID)
	if err != nil {
		handleError(w, err)
		return
	}
	if doc.OwnerID != userID {
		handleError(w, fmt.Errorf("document %s: %w", docID, domain.ErrForbidden))
		return
	}

	if err := h.documents.Unshare(r.Context(), docID, targetID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
