package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// The share set lives in a separate document_shares table.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, owner_id, title, content, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Content,
		doc.WordCount,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document with its share set. Access checks are
// the caller's concern.
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, content, word_count, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Documents)

	var doc models.Document
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Content,
		&doc.WordCount,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	shares, err := r.listShares(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.SharedWith = shares

	return &doc, nil
}

// ListByOwner retrieves all documents a user owns, ordered by
// updated_at DESC
func (r *PostgresDocumentRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, content, word_count, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, r.tables.Documents)

	return r.queryDocuments(ctx, query, ownerID)
}

// ListSharedWith retrieves all documents shared with a user, ordered by
// updated_at DESC
func (r *PostgresDocumentRepository) ListSharedWith(ctx context.Context, userID string) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT d.id, d.owner_id, d.title, d.content, d.word_count, d.created_at, d.updated_at
		FROM %s d
		JOIN %s s ON s.document_id = d.id
		WHERE s.user_id = $1
		ORDER BY d.updated_at DESC
	`, r.tables.Documents, r.tables.DocumentShares)

	return r.queryDocuments(ctx, query, userID)
}

func (r *PostgresDocumentRepository) queryDocuments(ctx context.Context, query, arg string) ([]models.Document, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		err := rows.Scan(&d.ID, &d.OwnerID, &d.Title, &d.Content, &d.WordCount, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	if docs == nil {
		docs = []models.Document{}
	}

	return docs, nil
}

// Update updates a document's title, content and word count
func (r *PostgresDocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, word_count = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		doc.Title,
		doc.Content,
		doc.WordCount,
		doc.UpdatedAt,
		doc.ID,
	)

	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document owned by the given user; shares cascade
func (r *PostgresDocumentRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Share grants a user read access to a document. Sharing twice is a
// no-op.
func (r *PostgresDocumentRepository) Share(ctx context.Context, docID, userID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (document_id, user_id) DO NOTHING
	`, r.tables.DocumentShares)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, docID, userID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
		}
		return fmt.Errorf("share document: %w", err)
	}

	return nil
}

// Unshare revokes a user's access to a document
func (r *PostgresDocumentRepository) Unshare(ctx context.Context, docID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE document_id = $1 AND user_id = $2
	`, r.tables.DocumentShares)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, docID, userID); err != nil {
		return fmt.Errorf("unshare document: %w", err)
	}

	return nil
}

// IsSharedWith reports whether a document is shared with a user
func (r *PostgresDocumentRepository) IsSharedWith(ctx context.Context, docID, userID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE document_id = $1 AND user_id = $2
		)
	`, r.tables.DocumentShares)

	var shared bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, docID, userID).Scan(&shared); err != nil {
		return false, fmt.Errorf("check document share: %w", err)
	}

	return shared, nil
}

func (r *PostgresDocumentRepository) listShares(ctx context.Context, docID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT user_id
		FROM %s
		WHERE document_id = $1
		ORDER BY user_id
	`, r.tables.DocumentShares)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("list document shares: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan document share: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document shares: %w", err)
	}

	return users, nil
}
