package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"inkwell/internal/config"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/httputil"
	"inkwell/internal/service/access"
)

// ProjectHandler handles HTTP requests for project operations
type ProjectHandler struct {
	projects repositories.ProjectRepository
	chapters repositories.ChapterRepository
	access   *access.Mediator
	logger   *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(
	projects repositories.ProjectRepository,
	chapters repositories.ChapterRepository,
	accessMediator *access.Mediator,
	logger *slog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		chapters: chapters,
		access:   accessMediator,
		logger:   logger,
	}
}

type createProjectRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Genre           string `json:"genre"`
	TargetWordCount int    `json:"target_word_count"`
	IsPublic        bool   `json:"is_public"`
}

func (r createProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.TargetWordCount, validation.Min(0)),
	)
}

// List returns the caller's projects (owned and collaborating)
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	projects, err := h.projects.ListByUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Create creates a new project owned by the caller
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	project := &models.Project{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		AuthorID:        httputil.GetUserID(r),
		AuthorName:      httputil.GetUserName(r),
		Genre:           req.Genre,
		TargetWordCount: req.TargetWordCount,
		IsPublic:        req.IsPublic,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.projects.Create(r.Context(), project); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("project created", "project_id", project.ID, "author_id", project.AuthorID)
	httputil.RespondJSON(w, http.StatusCreated, project)
}

// projectDetail is a project plus the aggregate numbers the dashboard
// shows next to it.
type projectDetail struct {
	*models.Project
	Stats    models.ProjectStats `json:"stats"`
	Progress float64             `json:"progress_percent"`
}

// Get returns one project with chapter count, word total and progress
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	project, err := h.access.RequireView(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	count, err := h.chapters.Count(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}
	totalWords, err := h.chapters.TotalWords(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projectDetail{
		Project:  project,
		Stats:    models.ProjectStats{ChapterCount: count, TotalWordCount: totalWords},
		Progress: project.ProgressPercent(totalWords),
	})
}

type updateProjectRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Genre           *string `json:"genre"`
	TargetWordCount *int    `json:"target_word_count"`
	IsPublic        *bool   `json:"is_public"`
}

// Update applies a partial update to a project's settings
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	project, err := h.access.RequireAdmin(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	var req updateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > config.MaxTitleLength {
			httputil.RespondError(w, http.StatusBadRequest, "title must be between 1 and 300 characters")
			return
		}
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Genre != nil {
		project.Genre = *req.Genre
	}
	if req.TargetWordCount != nil {
		if *req.TargetWordCount < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "target_word_count must not be negative")
			return
		}
		project.TargetWordCount = *req.TargetWordCount
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	project.UpdatedAt = time.Now()

	if err := h.projects.Update(r.Context(), project); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// Delete removes a project and everything under it
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireAdmin(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	if err := h.projects.Delete(r.Context(), projectID); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("project deleted", "project_id", projectID, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

type collaborationRequest struct {
	Enabled *bool `json:"enabled"`
}

// ToggleCollaboration flips or sets the collaborative flag
func (h *ProjectHandler) ToggleCollaboration(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	project, err := h.access.RequireAdmin(r.Context(), projectID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	// An empty body means "flip the flag".
	var req collaborationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Enabled != nil {
		project.IsCollaborative = *req.Enabled
	} else {
		project.IsCollaborative = !project.IsCollaborative
	}
	project.UpdatedAt = time.Now()

	if err := h.projects.Update(r.Context(), project); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"project_id":       project.ID,
		"is_collaborative": project.IsCollaborative,
	})
}

// Join adds the caller as a contributor via a share link. The project
// must have collaboration enabled; joining twice is a no-op.
func (h *ProjectHandler) Join(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	project, err := h.projects.GetByID(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}
	if !project.IsCollaborative {
		handleError(w, fmt.Errorf("project is not accepting collaborators: %w", domain.ErrForbidden))
		return
	}
	if project.AuthorID == userID {
		httputil.RespondJSON(w, http.StatusOK, map[string]any{"project_id": projectID, "role": "author"})
		return
	}
	if existing, err := h.projects.GetCollaborator(r.Context(), projectID, userID); err == nil {
		httputil.RespondJSON(w, http.StatusOK, map[string]any{"project_id": projectID, "role": existing.Role})
		return
	}

	collab := &models.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      models.RoleContributor,
		CanEdit:   true,
		AddedAt:   time.Now(),
	}
	if err := h.projects.AddCollaborator(r.Context(), collab); err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("collaborator joined", "project_id", projectID, "user_id", userID)
	httputil.RespondJSON(w, http.StatusCreated, map[string]any{"project_id": projectID, "role": collab.Role})
}

// ListCollaborators returns the project's collaborator relations
func (h *ProjectHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireView(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}
	collabs, err := h.projects.ListCollaborators(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"collaborators": collabs})
}

type addCollaboratorRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (r addCollaboratorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Role, validation.In(models.RoleEditor, models.RoleContributor, models.RoleReviewer)),
	)
}

// AddCollaborator attaches a user to the project with a role
func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	userID := httputil.GetUserID(r)

	if _, err := h.access.RequireAdmin(r.Context(), projectID, userID); err != nil {
		handleError(w, err)
		return
	}

	var req addCollaboratorRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleContributor
	}
	collab := &models.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		CanEdit:   role != models.RoleReviewer,
		CanInvite: role == models.RoleEditor,
		AddedAt:   time.Now(),
	}
	if err := h.projects.AddCollaborator(r.Context(), collab); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, collab)
}

// RemoveCollaborator detaches a user from the project. A collaborator
// may remove themselves; anyone else needs admin.
func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	targetID := r.PathValue("userID")
	userID := httputil.GetUserID(r)

	if targetID != userID {
		if _, err := h.access.RequireAdmin(r.Context(), projectID, userID); err != nil {
			handleError(w, err)
			return
		}
	}
	if err := h.projects.RemoveCollaborator(r.Context(), projectID, targetID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
