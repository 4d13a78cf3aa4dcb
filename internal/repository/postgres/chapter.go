package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresChapterRepository implements the ChapterRepository interface.
// The order column is named sort_order so it never needs quoting; the
// JSON field stays "order".
type PostgresChapterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChapterRepository creates a new chapter repository
func NewChapterRepository(config *RepositoryConfig) repositories.ChapterRepository {
	return &PostgresChapterRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new chapter at its assigned sort_order
func (r *PostgresChapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, project_id, title, content, sort_order, word_count, last_edited_by, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chapter.ID,
		chapter.ProjectID,
		chapter.Title,
		chapter.Content,
		chapter.Order,
		chapter.WordCount,
		chapter.LastEditedBy,
		chapter.Published,
		chapter.CreatedAt,
		chapter.UpdatedAt,
	).Scan(&chapter.CreatedAt, &chapter.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("chapter order %d taken in project %s: %w", chapter.Order, chapter.ProjectID, domain.ErrOrderCollision)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project %s: %w", chapter.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chapter: %w", err)
	}

	return nil
}

// GetByID retrieves a chapter by ID, scoped to its project
func (r *PostgresChapterRepository) GetByID(ctx context.Context, id, projectID string) (*models.Chapter, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, content, sort_order, word_count, last_edited_by, published, created_at, updated_at
		FROM %s
		WHERE id = $1 AND project_id = $2
	`, r.tables.Chapters)

	var chapter models.Chapter
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, projectID).Scan(
		&chapter.ID,
		&chapter.ProjectID,
		&chapter.Title,
		&chapter.Content,
		&chapter.Order,
		&chapter.WordCount,
		&chapter.LastEditedBy,
		&chapter.Published,
		&chapter.CreatedAt,
		&chapter.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chapter: %w", err)
	}

	return &chapter, nil
}

// ListByProject retrieves all chapters of a project ordered by
// (sort_order, id). The id tiebreak keeps the sequence deterministic
// even if orders were ever left colliding.
func (r *PostgresChapterRepository) ListByProject(ctx context.Context, projectID string) ([]models.Chapter, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, content, sort_order, word_count, last_edited_by, published, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY sort_order, id
	`, r.tables.Chapters)

	return r.queryChapters(ctx, query, projectID, true)
}

// ListMeta retrieves all chapters of a project without content,
// ordered by (sort_order, id)
func (r *PostgresChapterRepository) ListMeta(ctx context.Context, projectID string) ([]models.Chapter, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, sort_order, word_count, last_edited_by, published, created_at, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY sort_order, id
	`, r.tables.Chapters)

	return r.queryChapters(ctx, query, projectID, false)
}

func (r *PostgresChapterRepository) queryChapters(ctx context.Context, query, projectID string, withContent bool) ([]models.Chapter, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var chapters []models.Chapter
	for rows.Next() {
		var c models.Chapter
		if withContent {
			err = rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Content, &c.Order, &c.WordCount, &c.LastEditedBy, &c.Published, &c.CreatedAt, &c.UpdatedAt)
		} else {
			err = rows.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Order, &c.WordCount, &c.LastEditedBy, &c.Published, &c.CreatedAt, &c.UpdatedAt)
		}
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}

	if chapters == nil {
		chapters = []models.Chapter{}
	}

	return chapters, nil
}

// Update updates a chapter's content fields. Order changes go through
// SetOrder and the shift methods, not here.
func (r *PostgresChapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, word_count = $3, last_edited_by = $4, published = $5, updated_at = $6
		WHERE id = $7 AND project_id = $8
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		chapter.Title,
		chapter.Content,
		chapter.WordCount,
		chapter.LastEditedBy,
		chapter.Published,
		chapter.UpdatedAt,
		chapter.ID,
		chapter.ProjectID,
	)

	if err != nil {
		return fmt.Errorf("update chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", chapter.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a chapter. Compaction of the remaining orders is the
// ordering engine's job.
func (r *PostgresChapterRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND project_id = $2
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete chapter: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Count returns the number of chapters in a project
func (r *PostgresChapterRepository) Count(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE project_id = $1
	`, r.tables.Chapters)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chapters: %w", err)
	}

	return count, nil
}

// ShiftOrdersFrom adds delta to sort_order of every chapter with
// sort_order >= position, as one statement
func (r *PostgresChapterRepository) ShiftOrdersFrom(ctx context.Context, projectID string, position, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = sort_order + $1
		WHERE project_id = $2 AND sort_order >= $3
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, delta, projectID, position); err != nil {
		return fmt.Errorf("shift orders from %d: %w", position, err)
	}

	return nil
}

// ShiftOrdersAbove adds delta to sort_order of every chapter with
// sort_order > position, as one statement
func (r *PostgresChapterRepository) ShiftOrdersAbove(ctx context.Context, projectID string, position, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = sort_order + $1
		WHERE project_id = $2 AND sort_order > $3
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, delta, projectID, position); err != nil {
		return fmt.Errorf("shift orders above %d: %w", position, err)
	}

	return nil
}

// ShiftOrderRange adds delta to sort_order of every chapter with
// lo <= sort_order <= hi, as one statement
func (r *PostgresChapterRepository) ShiftOrderRange(ctx context.Context, projectID string, lo, hi, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = sort_order + $1
		WHERE project_id = $2 AND sort_order BETWEEN $3 AND $4
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, delta, projectID, lo, hi); err != nil {
		return fmt.Errorf("shift orders %d..%d: %w", lo, hi, err)
	}

	return nil
}

// SetOrder assigns an explicit sort_order to one chapter
func (r *PostgresChapterRepository) SetOrder(ctx context.Context, id, projectID string, order int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET sort_order = $1
		WHERE id = $2 AND project_id = $3
	`, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, order, id, projectID)
	if err != nil {
		return fmt.Errorf("set order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chapter %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// HasOrderCollision reports whether any two chapters of the project
// currently share a sort_order
func (r *PostgresChapterRepository) HasOrderCollision(ctx context.Context, projectID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1
			FROM %s
			WHERE project_id = $1
			GROUP BY sort_order
			HAVING COUNT(*) > 1
		)
	`, r.tables.Chapters)

	var collides bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&collides); err != nil {
		return false, fmt.Errorf("check order collision: %w", err)
	}

	return collides, nil
}

// NormalizeOrders rewrites sort_order to the dense sequence 0..N-1,
// preserving the (sort_order, id) sort, in a single statement
func (r *PostgresChapterRepository) NormalizeOrders(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		UPDATE %s c
		SET sort_order = ranked.rn - 1
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY sort_order, id) AS rn
			FROM %s
			WHERE project_id = $1
		) ranked
		WHERE c.id = ranked.id AND c.sort_order <> ranked.rn - 1
	`, r.tables.Chapters, r.tables.Chapters)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("normalize orders: %w", err)
	}

	return nil
}

// TotalWords sums the cached chapter word counts for a project
func (r *PostgresChapterRepository) TotalWords(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(word_count), 0)
		FROM %s
		WHERE project_id = $1
	`, r.tables.Chapters)

	var total int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total words: %w", err)
	}

	return total, nil
}
