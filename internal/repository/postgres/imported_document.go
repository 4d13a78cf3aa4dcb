package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresImportRepository implements the ImportRepository interface
type PostgresImportRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewImportRepository creates a new import repository
func NewImportRepository(config *RepositoryConfig) repositories.ImportRepository {
	return &PostgresImportRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create records an imported document
func (r *PostgresImportRepository) Create(ctx context.Context, imp *models.ImportedDocument) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, project_id, title, file_ref, source_url, format, content, file_size, word_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, r.tables.ImportedDocuments)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		imp.ID,
		imp.UserID,
		imp.ProjectID,
		imp.Title,
		imp.FileRef,
		imp.SourceURL,
		imp.Format,
		imp.Content,
		imp.FileSize,
		imp.WordCount,
		imp.CreatedAt,
	).Scan(&imp.CreatedAt)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create import: %w", err)
	}

	return nil
}

// GetByID retrieves an imported document owned by the given user
func (r *PostgresImportRepository) GetByID(ctx context.Context, id, userID string) (*models.ImportedDocument, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, project_id, title, file_ref, source_url, format, content, file_size, word_count, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.ImportedDocuments)

	var imp models.ImportedDocument
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&imp.ID,
		&imp.UserID,
		&imp.ProjectID,
		&imp.Title,
		&imp.FileRef,
		&imp.SourceURL,
		&imp.Format,
		&imp.Content,
		&imp.FileSize,
		&imp.WordCount,
		&imp.CreatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("import %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get import: %w", err)
	}

	return &imp, nil
}

// ListByUser retrieves a user's imports, newest first, without content
func (r *PostgresImportRepository) ListByUser(ctx context.Context, userID string) ([]models.ImportedDocument, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, project_id, title, file_ref, source_url, format, file_size, word_count, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.ImportedDocuments)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var imports []models.ImportedDocument
	for rows.Next() {
		var imp models.ImportedDocument
		err := rows.Scan(
			&imp.ID,
			&imp.UserID,
			&imp.ProjectID,
			&imp.Title,
			&imp.FileRef,
			&imp.SourceURL,
			&imp.Format,
			&imp.FileSize,
			&imp.WordCount,
			&imp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}

	if imports == nil {
		imports = []models.ImportedDocument{}
	}

	return imports, nil
}

// Delete deletes an imported document owned by the given user
func (r *PostgresImportRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.ImportedDocuments)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete import: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("import %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
