package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// CharacterRepository persists a project's character roster. Name
// uniqueness within a project is enforced by the store; violations
// surface as *domain.ConflictError.
type CharacterRepository interface {
	Create(ctx context.Context, character *models.Character) error
	GetByID(ctx context.Context, id, projectID string) (*models.Character, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Character, error)
	Update(ctx context.Context, character *models.Character) error
	Delete(ctx context.Context, id, projectID string) error
}
