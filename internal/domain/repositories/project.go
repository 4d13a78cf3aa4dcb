package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// ProjectRepository persists projects and the collaborator relation.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	Update(ctx context.Context, project *models.Project) error

	// Delete removes the project; chapters and characters cascade.
	Delete(ctx context.Context, id string) error

	AddCollaborator(ctx context.Context, collab *models.ProjectCollaborator) error
	RemoveCollaborator(ctx context.Context, projectID, userID string) error
	ListCollaborators(ctx context.Context, projectID string) ([]models.ProjectCollaborator, error)

	// GetCollaborator returns the relation for (projectID, userID) or
	// domain.ErrNotFound when the user is not a collaborator.
	GetCollaborator(ctx context.Context, projectID, userID string) (*models.ProjectCollaborator, error)
}
