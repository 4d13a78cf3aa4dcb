// Package access is the single authorization gate for projects.
// Chapter, character and export guards reduce to project guards
// through ownership, so every handler asks this mediator and nothing
// else.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// Mediator answers the three project authorization questions.
type Mediator struct {
	projects repositories.ProjectRepository
	logger   *slog.Logger
}

// NewMediator creates a new access mediator
func NewMediator(projects repositories.ProjectRepository, logger *slog.Logger) *Mediator {
	return &Mediator{projects: projects, logger: logger}
}

// CanView reports whether the user may read the project. Public
// projects are readable by anyone, including anonymous callers (empty
// userID).
func (m *Mediator) CanView(ctx context.Context, project *models.Project, userID string) (bool, error) {
	if project.IsPublic {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	if project.AuthorID == userID {
		return true, nil
	}
	return m.isCollaborator(ctx, project.ID, userID)
}

// CanEdit reports whether the user may mutate the project's content:
// the author, or a collaborator whose relation carries can_edit.
func (m *Mediator) CanEdit(ctx context.Context, project *models.Project, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if project.AuthorID == userID {
		return true, nil
	}
	collab, err := m.projects.GetCollaborator(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check edit access: %w", err)
	}
	return collab.CanEdit, nil
}

// CanAdmin reports whether the user owns the project. Only the author
// may delete it, change its settings or manage collaborators.
func (m *Mediator) CanAdmin(_ context.Context, project *models.Project, userID string) (bool, error) {
	return userID != "" && project.AuthorID == userID, nil
}

// RequireView loads a project and enforces CanView in one step.
func (m *Mediator) RequireView(ctx context.Context, projectID, userID string) (*models.Project, error) {
	return m.require(ctx, projectID, userID, m.CanView)
}

// RequireEdit loads a project and enforces CanEdit in one step.
func (m *Mediator) RequireEdit(ctx context.Context, projectID, userID string) (*models.Project, error) {
	return m.require(ctx, projectID, userID, m.CanEdit)
}

// RequireAdmin loads a project and enforces CanAdmin in one step.
func (m *Mediator) RequireAdmin(ctx context.Context, projectID, userID string) (*models.Project, error) {
	return m.require(ctx, projectID, userID, m.CanAdmin)
}

type guard func(context.Context, *models.Project, string) (bool, error)

func (m *Mediator) require(ctx context.Context, projectID, userID string, check guard) (*models.Project, error) {
	project, err := m.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := check(ctx, project, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		m.logger.Debug("access denied", "project_id", projectID, "user_id", userID)
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrForbidden)
	}
	return project, nil
}

func (m *Mediator) isCollaborator(ctx context.Context, projectID, userID string) (bool, error) {
	_, err := m.projects.GetCollaborator(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check collaborator: %w", err)
	}
	return true, nil
}
