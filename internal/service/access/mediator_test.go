package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// fakeProjectRepo implements just enough of ProjectRepository for the
// mediator.
type fakeProjectRepo struct {
	projects map[string]*models.Project
	collabs  map[string]*models.ProjectCollaborator // key: projectID/userID
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]*models.Project),
		collabs:  make(map[string]*models.ProjectCollaborator),
	}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProjectRepo) ListByUser(_ context.Context, _ string) ([]models.Project, error) {
	return nil, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, _ *models.Project) error { return nil }
func (f *fakeProjectRepo) Delete(_ context.Context, _ string) error          { return nil }

func (f *fakeProjectRepo) AddCollaborator(_ context.Context, c *models.ProjectCollaborator) error {
	f.collabs[c.ProjectID+"/"+c.UserID] = c
	return nil
}

func (f *fakeProjectRepo) RemoveCollaborator(_ context.Context, projectID, userID string) error {
	delete(f.collabs, projectID+"/"+userID)
	return nil
}

func (f *fakeProjectRepo) ListCollaborators(_ context.Context, _ string) ([]models.ProjectCollaborator, error) {
	return nil, nil
}

func (f *fakeProjectRepo) GetCollaborator(_ context.Context, projectID, userID string) (*models.ProjectCollaborator, error) {
	c, ok := f.collabs[projectID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("collaborator %s: %w", userID, domain.ErrNotFound)
	}
	return c, nil
}

func setupMediator() (*Mediator, *fakeProjectRepo) {
	repo := newFakeProjectRepo()
	repo.projects["private"] = &models.Project{ID: "private", AuthorID: "alice"}
	repo.projects["public"] = &models.Project{ID: "public", AuthorID: "alice", IsPublic: true}
	repo.collabs["private/editor"] = &models.ProjectCollaborator{
		ProjectID: "private", UserID: "editor", Role: models.RoleEditor, CanEdit: true,
	}
	repo.collabs["private/reviewer"] = &models.ProjectCollaborator{
		ProjectID: "private", UserID: "reviewer", Role: models.RoleReviewer, CanEdit: false,
	}
	return NewMediator(repo, slog.Default()), repo
}

func TestMediator_CanView(t *testing.T) {
	m, repo := setupMediator()
	tests := []struct {
		name      string
		projectID string
		userID    string
		want      bool
	}{
		{"author views own private project", "private", "alice", true},
		{"collaborator views private project", "private", "editor", true},
		{"read-only collaborator views private project", "private", "reviewer", true},
		{"stranger cannot view private project", "private", "mallory", false},
		{"anonymous cannot view private project", "private", "", false},
		{"stranger views public project", "public", "mallory", true},
		{"anonymous views public project", "public", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := repo.projects[tt.projectID]
			got, err := m.CanView(context.Background(), project, tt.userID)
			if err != nil {
				t.Fatalf("CanView() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanView() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMediator_CanEdit(t *testing.T) {
	m, repo := setupMediator()
	tests := []struct {
		name      string
		projectID string
		userID    string
		want      bool
	}{
		{"author edits", "private", "alice", true},
		{"collaborator with can_edit edits", "private", "editor", true},
		{"read-only collaborator cannot edit", "private", "reviewer", false},
		{"stranger cannot edit", "private", "mallory", false},
		{"anonymous cannot edit public project", "public", "", false},
		{"stranger cannot edit public project", "public", "mallory", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := repo.projects[tt.projectID]
			got, err := m.CanEdit(context.Background(), project, tt.userID)
			if err != nil {
				t.Fatalf("CanEdit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanEdit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMediator_CanAdmin(t *testing.T) {
	m, repo := setupMediator()
	project := repo.projects["private"]

	if ok, _ := m.CanAdmin(context.Background(), project, "alice"); !ok {
		t.Error("author should have admin")
	}
	if ok, _ := m.CanAdmin(context.Background(), project, "editor"); ok {
		t.Error("collaborator should not have admin")
	}
	if ok, _ := m.CanAdmin(context.Background(), project, ""); ok {
		t.Error("anonymous should not have admin")
	}
}

func TestMediator_Require(t *testing.T) {
	m, _ := setupMediator()

	if _, err := m.RequireEdit(context.Background(), "private", "reviewer"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("RequireEdit() error = %v, want ErrForbidden", err)
	}
	if _, err := m.RequireView(context.Background(), "missing", "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RequireView() error = %v, want ErrNotFound", err)
	}
	project, err := m.RequireAdmin(context.Background(), "private", "alice")
	if err != nil {
		t.Fatalf("RequireAdmin() error = %v", err)
	}
	if project.ID != "private" {
		t.Errorf("RequireAdmin() project = %s", project.ID)
	}
}
