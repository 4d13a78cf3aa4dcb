package handler

import (
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/httputil"
	"inkwell/internal/service/access"
)

// CharacterHandler handles HTTP requests for a project's character roster
type CharacterHandler struct {
	characters repositories.CharacterRepository
	access     *access.Mediator
	logger     *slog.Logger
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(
	characters repositories.CharacterRepository,
	accessMediator *access.Mediator,
	logger *slog.Logger,
) *CharacterHandler {
	return &CharacterHandler{
		characters: characters,
		access:     accessMediator,
		logger:     logger,
	}
}

// characterRequest carries create and patch payloads. On patch, nil
// pointers leave the stored value alone.
type characterRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	Role          *string `json:"role"`
	Age           *int    `json:"age"`
	Appearance    *string `json:"appearance"`
	Personality   *string `json:"personality"`
	Background    *string `json:"background"`
	Goals         *string `json:"goals"`
	Conflicts     *string `json:"conflicts"`
	Relationships *string `json:"relationships"`
	Notes         *string `json:"notes"`
	ImageRef      *string `json:"image_ref"`
}

func (r characterRequest) validateName() error {
	return validation.Validate(r.Name,
		validation.Required,
		validation.Length(1, config.MaxTitleLength),
	)
}

func (r characterRequest) apply(c *models.Character) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Role != nil {
		c.Role = *r.Role
	}
	if r.Age != nil {
		c.Age = r.Age
	}
	if r.Appearance != nil {
		c.Appearance = *r.Appearance
	}
	if r.Personality != nil {
		c.Personality = *r.Personality
	}
	if r.Background != nil {
		c.Background = *r.Background
	}
	if r.Goals != nil {
		c.Goals = *r.Goals
	}
	if r.Conflicts != nil {
		c.Conflicts = *r.Conflicts
	}
	if r.Relationships != nil {
		c.Relationships = *r.Relationships
	}
	if r.Notes != nil {
		c.Notes = *r.Notes
	}
	if r.ImageRef != nil {
		c.ImageRef = r.ImageRef
	}
}

// List returns the project's characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireView(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	characters, err := h.characters.ListByProject(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"characters": characters})
}

// Get returns one character
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	characterID := r.PathValue("characterID")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireView(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	character, err := h.characters.GetByID(r.Context(), characterID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, character)
}

// Create adds a character to the project
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireEdit(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	var req characterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.validateName(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "name: "+err.Error())
		return
	}

	now := time.Now()
	character := &models.Character{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.apply(character)

	if err := h.characters.Create(r.Context(), character); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, character)
}

// Update applies a partial update to a character
func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	characterID := r.PathValue("characterID")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireEdit(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	character, err := h.characters.GetByID(r.Context(), characterID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	var req characterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name != nil {
		if err := req.validateName(); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "name: "+err.Error())
			return
		}
	}

	req.apply(character)
	character.UpdatedAt = time.Now()

	if err := h.characters.Update(r.Context(), character); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, character)
}

// Delete removes a character from the project
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	characterID := r.PathValue("characterID")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireEdit(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.characters.Delete(r.Context(), characterID, projectID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
