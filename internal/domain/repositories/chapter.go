package repositories

import (
	"context"

	"inkwell/internal/domain/models"
)

// ChapterRepository persists chapters. Range shifts are single UPDATE
// statements so that a shift is atomic with respect to concurrent
// readers; the ordering engine composes them inside transactions.
type ChapterRepository interface {
	Create(ctx context.Context, chapter *models.Chapter) error
	GetByID(ctx context.Context, id, projectID string) (*models.Chapter, error)

	// ListByProject returns all chapters ordered by (sort_order, id).
	ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error)

	// ListMeta returns all chapters ordered by (sort_order, id) without
	// their content column.
	ListMeta(ctx context.Context, projectID string) ([]models.Chapter, error)

	Update(ctx context.Context, chapter *models.Chapter) error
	Delete(ctx context.Context, id, projectID string) error

	Count(ctx context.Context, projectID string) (int, error)

	// ShiftOrdersFrom adds delta to sort_order of every chapter with
	// sort_order >= position.
	ShiftOrdersFrom(ctx context.Context, projectID string, position, delta int) error

	// ShiftOrdersAbove adds delta to sort_order of every chapter with
	// sort_order > position.
	ShiftOrdersAbove(ctx context.Context, projectID string, position, delta int) error

	// ShiftOrderRange adds delta to sort_order of every chapter with
	// lo <= sort_order <= hi.
	ShiftOrderRange(ctx context.Context, projectID string, lo, hi, delta int) error

	// SetOrder assigns an explicit order to one chapter.
	SetOrder(ctx context.Context, id, projectID string, order int) error

	// HasOrderCollision reports whether two chapters in the project
	// currently share a sort_order.
	HasOrderCollision(ctx context.Context, projectID string) (bool, error)

	// NormalizeOrders rewrites sort_order to {0..N-1} preserving the
	// (sort_order, id) sort, in a single statement.
	NormalizeOrders(ctx context.Context, projectID string) error

	// TotalWords sums the cached word counts for the project.
	TotalWords(ctx context.Context, projectID string) (int, error)
}
