package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// DocumentRepository persists standalone documents and their share set.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error)
	ListSharedWith(ctx context.Context, userID string) ([]models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id, ownerID string) error

	Share(ctx context.Context, docID, userID string) error
	Unshare(ctx context.Context, docID, userID string) error
	IsSharedWith(ctx context.Context, docID, userID string) (bool, error)
}

// ImportRepository persists imported-document records.
type ImportRepository interface {
	Create(ctx context.Context, imp *models.ImportedDocument) error
	GetByID(ctx context.Context, id, userID string) (*models.ImportedDocument, error)
	ListByUser(ctx context.Context, userID string) ([]models.ImportedDocument, error)
	Delete(ctx context.Context, id, userID string) error
}
