package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresCharacterRepository implements the CharacterRepository interface
type PostgresCharacterRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(config *RepositoryConfig) repositories.CharacterRepository {
	return &PostgresCharacterRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const characterColumns = "id, project_id, name, description, role, age, appearance, personality, background, goals, conflicts, relationships, notes, image_ref, created_at, updated_at"

func scanCharacter(row interface{ Scan(...any) error }, c *models.Character) error {
	return row.Scan(
		&c.ID,
		&c.ProjectID,
		&c.Name,
		&c.Description,
		&c.Role,
		&c.Age,
		&c.Appearance,
		&c.Personality,
		&c.Background,
		&c.Goals,
		&c.Conflicts,
		&c.Relationships,
		&c.Notes,
		&c.ImageRef,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// Create creates a new character. Names are unique per project via a
// (project_id, name) constraint.
func (r *PostgresCharacterRepository) Create(ctx context.Context, character *models.Character) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`, r.tables.Characters, characterColumns)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		character.ID,
		character.ProjectID,
		character.Name,
		character.Description,
		character.Role,
		character.Age,
		character.Appearance,
		character.Personality,
		character.Background,
		character.Goals,
		character.Conflicts,
		character.Relationships,
		character.Notes,
		character.ImageRef,
		character.CreatedAt,
		character.UpdatedAt,
	).Scan(&character.CreatedAt, &character.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("character '%s' already exists in this project", character.Name),
				ResourceType: "character",
				ResourceID:   character.ID,
			}
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project %s: %w", character.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create character: %w", err)
	}

	return nil
}

// GetByID retrieves a character by ID, scoped to its project
func (r *PostgresCharacterRepository) GetByID(ctx context.Context, id, projectID string) (*models.Character, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND project_id = $2
	`, characterColumns, r.tables.Characters)

	var c models.Character
	executor := GetExecutor(ctx, r.pool)
	err := scanCharacter(executor.QueryRow(ctx, query, id, projectID), &c)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("character %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get character: %w", err)
	}

	return &c, nil
}

// ListByProject retrieves all characters of a project ordered by name
func (r *PostgresCharacterRepository) ListByProject(ctx context.Context, projectID string) ([]models.Character, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY name
	`, characterColumns, r.tables.Characters)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var characters []models.Character
	for rows.Next() {
		var c models.Character
		if err := scanCharacter(rows, &c); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		characters = append(characters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}

	if characters == nil {
		characters = []models.Character{}
	}

	return characters, nil
}

// Update updates a character's fields
func (r *PostgresCharacterRepository) Update(ctx context.Context, character *models.Character) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, role = $3, age = $4, appearance = $5, personality = $6,
			background = $7, goals = $8, conflicts = $9, relationships = $10, notes = $11,
			image_ref = $12, updated_at = $13
		WHERE id = $14 AND project_id = $15
	`, r.tables.Characters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		character.Name,
		character.Description,
		character.Role,
		character.Age,
		character.Appearance,
		character.Personality,
		character.Background,
		character.Goals,
		character.Conflicts,
		character.Relationships,
		character.Notes,
		character.ImageRef,
		character.UpdatedAt,
		character.ID,
		character.ProjectID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("character '%s' already exists in this project", character.Name),
				ResourceType: "character",
				ResourceID:   character.ID,
			}
		}
		return fmt.Errorf("update character: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("character %s: %w", character.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a character
func (r *PostgresCharacterRepository) Delete(ctx context.Context, id, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND project_id = $2
	`, r.tables.Characters)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, projectID)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("character %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
