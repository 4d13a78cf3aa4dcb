package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, author_id, author_name, genre, target_word_count, is_collaborative, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.AuthorID,
		project.AuthorName,
		project.Genre,
		project.TargetWordCount,
		project.IsCollaborative,
		project.IsPublic,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project '%s' already exists", project.Title),
				ResourceType: "project",
				ResourceID:   project.ID,
			}
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID. Access checks are the caller's
// concern; public and shared projects are readable by non-owners.
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, title, description, author_id, author_name, genre, target_word_count, is_collaborative, is_public, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Projects)

	var project models.Project
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.AuthorID,
		&project.AuthorName,
		&project.Genre,
		&project.TargetWordCount,
		&project.IsCollaborative,
		&project.IsPublic,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

// ListByUser retrieves every project the user owns or collaborates on,
// ordered by updated_at DESC.
func (r *PostgresProjectRepository) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT p.id, p.title, p.description, p.author_id, p.author_name, p.genre, p.target_word_count, p.is_collaborative, p.is_public, p.created_at, p.updated_at
		FROM %s p
		LEFT JOIN %s c ON c.project_id = p.id
		WHERE p.author_id = $1 OR c.user_id = $1
		ORDER BY p.updated_at DESC
	`, r.tables.Projects, r.tables.Collaborators)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.AuthorID,
			&project.AuthorName,
			&project.Genre,
			&project.TargetWordCount,
			&project.IsCollaborative,
			&project.IsPublic,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}

// Update updates a project's mutable fields and its updated_at timestamp
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, genre = $3, target_word_count = $4, is_collaborative = $5, is_public = $6, updated_at = $7
		WHERE id = $8
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		project.Title,
		project.Description,
		project.Genre,
		project.TargetWordCount,
		project.IsCollaborative,
		project.IsPublic,
		project.UpdatedAt,
		project.ID,
	)

	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a project. Chapters, characters and collaborator rows
// cascade via ON DELETE CASCADE.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// AddCollaborator adds a user to a project
func (r *PostgresProjectRepository) AddCollaborator(ctx context.Context, collab *models.ProjectCollaborator) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, user_id, role, can_edit, can_delete, can_invite, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.tables.Collaborators)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		collab.ProjectID,
		collab.UserID,
		collab.Role,
		collab.CanEdit,
		collab.CanDelete,
		collab.CanInvite,
		collab.AddedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.ConflictError{
				Message:      "user is already a collaborator",
				ResourceType: "collaborator",
				ResourceID:   collab.UserID,
			}
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("project %s: %w", collab.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("add collaborator: %w", err)
	}

	return nil
}

// RemoveCollaborator removes a user from a project
func (r *PostgresProjectRepository) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE project_id = $1 AND user_id = $2
	`, r.tables.Collaborators)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID, userID)
	if err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("collaborator %s: %w", userID, domain.ErrNotFound)
	}

	return nil
}

// ListCollaborators retrieves all collaborators of a project
func (r *PostgresProjectRepository) ListCollaborators(ctx context.Context, projectID string) ([]models.ProjectCollaborator, error) {
	query := fmt.Sprintf(`
		SELECT project_id, user_id, role, can_edit, can_delete, can_invite, added_at
		FROM %s
		WHERE project_id = $1
		ORDER BY added_at
	`, r.tables.Collaborators)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	var collabs []models.ProjectCollaborator
	for rows.Next() {
		var c models.ProjectCollaborator
		err := rows.Scan(&c.ProjectID, &c.UserID, &c.Role, &c.CanEdit, &c.CanDelete, &c.CanInvite, &c.AddedAt)
		if err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		collabs = append(collabs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborators: %w", err)
	}

	if collabs == nil {
		collabs = []models.ProjectCollaborator{}
	}

	return collabs, nil
}

// GetCollaborator retrieves the collaborator relation for one user
func (r *PostgresProjectRepository) GetCollaborator(ctx context.Context, projectID, userID string) (*models.ProjectCollaborator, error) {
	query := fmt.Sprintf(`
		SELECT project_id, user_id, role, can_edit, can_delete, can_invite, added_at
		FROM %s
		WHERE project_id = $1 AND user_id = $2
	`, r.tables.Collaborators)

	var c models.ProjectCollaborator
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID, userID).Scan(
		&c.ProjectID, &c.UserID, &c.Role, &c.CanEdit, &c.CanDelete, &c.CanInvite, &c.AddedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("collaborator %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get collaborator: %w", err)
	}

	return &c, nil
}
