package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
	"inkwell/internal/httputil"
	"inkwell/internal/service/access"
)

func httputilWithUser(r *http.Request, userID string) *http.Request {
	return httputil.WithUser(r, userID, "Tester")
}

// fakeProjectRepo keeps projects and collaborator relations in memory.
type fakeProjectRepo struct {
	projects map[string]*models.Project
	collabs  map[string]*models.ProjectCollaborator
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[string]*models.Project),
		collabs:  make(map[string]*models.ProjectCollaborator),
	}
}

func collabKey(projectID, userID string) string { return projectID + "/" + userID }

func (f *fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProjectRepo) ListByUser(_ context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.AuthorID == userID {
			out = append(out, *p)
			continue
		}
		if _, ok := f.collabs[collabKey(p.ID, userID)]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *models.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
	}
	clone := *p
	f.projects[p.ID] = &clone
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) AddCollaborator(_ context.Context, c *models.ProjectCollaborator) error {
	f.collabs[collabKey(c.ProjectID, c.UserID)] = c
	return nil
}

func (f *fakeProjectRepo) RemoveCollaborator(_ context.Context, projectID, userID string) error {
	delete(f.collabs, collabKey(projectID, userID))
	return nil
}

func (f *fakeProjectRepo) ListCollaborators(_ context.Context, projectID string) ([]models.ProjectCollaborator, error) {
	var out []models.ProjectCollaborator
	for _, c := range f.collabs {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) GetCollaborator(_ context.Context, projectID, userID string) (*models.ProjectCollaborator, error) {
	c, ok := f.collabs[collabKey(projectID, userID)]
	if !ok {
		return nil, fmt.Errorf("collaborator: %w", domain.ErrNotFound)
	}
	return c, nil
}

// statsChapterRepo serves just the aggregate queries the project
// handler needs.
type statsChapterRepo struct {
	count      int
	totalWords int
}

func (f *statsChapterRepo) Create(context.Context, *models.Chapter) error { return nil }
func (f *statsChapterRepo) GetByID(context.Context, string, string) (*models.Chapter, error) {
	return nil, domain.ErrNotFound
}
func (f *statsChapterRepo) ListByProject(context.Context, string) ([]models.Chapter, error) {
	return nil, nil
}
func (f *statsChapterRepo) ListMeta(context.Context, string) ([]models.Chapter, error) {
	return nil, nil
}
func (f *statsChapterRepo) Update(context.Context, *models.Chapter) error  { return nil }
func (f *statsChapterRepo) Delete(context.Context, string, string) error   { return nil }
func (f *statsChapterRepo) Count(context.Context, string) (int, error)     { return f.count, nil }
func (f *statsChapterRepo) ShiftOrdersFrom(context.Context, string, int, int) error  { return nil }
func (f *statsChapterRepo) ShiftOrdersAbove(context.Context, string, int, int) error { return nil }
func (f *statsChapterRepo) ShiftOrderRange(context.Context, string, int, int, int) error {
	return nil
}
func (f *statsChapterRepo) SetOrder(context.Context, string, string, int) error { return nil }
func (f *statsChapterRepo) HasOrderCollision(context.Context, string) (bool, error) {
	return false, nil
}
func (f *statsChapterRepo) NormalizeOrders(context.Context, string) error { return nil }
func (f *statsChapterRepo) TotalWords(context.Context, string) (int, error) {
	return f.totalWords, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const (
	ownerID    = "11111111-1111-1111-1111-111111111111"
	strangerID = "22222222-2222-2222-2222-222222222222"
	projectID  = "33333333-3333-3333-3333-333333333333"
)

func newProjectHandler(repo *fakeProjectRepo, chapters *statsChapterRepo) *ProjectHandler {
	logger := discardLogger()
	return NewProjectHandler(repo, chapters, access.NewMediator(repo, logger), logger)
}

func seedProject(repo *fakeProjectRepo, collaborative, public bool) {
	repo.projects[projectID] = &models.Project{
		ID:              projectID,
		Title:           "Tidelands",
		AuthorID:        ownerID,
		AuthorName:      "Morgan",
		TargetWordCount: 1000,
		IsCollaborative: collaborative,
		IsPublic:        public,
	}
}

func doRequest(h http.HandlerFunc, method, body, userID string, pathValues map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/", reader)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = httputilWithUser(req, userID)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestProjectGet_IncludesStatsAndProgress(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	h := newProjectHandler(repo, &statsChapterRepo{count: 4, totalWords: 250})

	rec := doRequest(h.Get, http.MethodGet, "", ownerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Title string `json:"title"`
		Stats struct {
			ChapterCount   int `json:"chapter_count"`
			TotalWordCount int `json:"total_word_count"`
		} `json:"stats"`
		Progress float64 `json:"progress_percent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Title != "Tidelands" {
		t.Fatalf("title = %q", body.Title)
	}
	if body.Stats.ChapterCount != 4 || body.Stats.TotalWordCount != 250 {
		t.Fatalf("stats = %+v", body.Stats)
	}
	if body.Progress != 25 {
		t.Fatalf("progress = %v, want 25", body.Progress)
	}
}

func TestProjectGet_PrivateDeniedForStranger(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.Get, http.MethodGet, "", strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Permission denied" {
		t.Fatalf("error = %q", body["error"])
	}
}

func TestProjectGet_PublicReadableAnonymously(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, true)
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.Get, http.MethodGet, "", "", map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProjectCreate(t *testing.T) {
	repo := newFakeProjectRepo()
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.Create, http.MethodPost,
		`{"title": "New Book", "target_word_count": 5000}`, ownerID, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created models.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.AuthorID != ownerID {
		t.Fatalf("author_id = %q, want %q", created.AuthorID, ownerID)
	}
	if _, ok := repo.projects[created.ID]; !ok {
		t.Fatal("project not persisted")
	}
}

func TestProjectCreate_RejectsMissingTitle(t *testing.T) {
	h := newProjectHandler(newFakeProjectRepo(), &statsChapterRepo{})

	rec := doRequest(h.Create, http.MethodPost, `{"description": "no title"}`, ownerID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProjectUpdate_AdminOnly(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	repo.collabs[collabKey(projectID, strangerID)] = &models.ProjectCollaborator{
		ProjectID: projectID, UserID: strangerID, Role: models.RoleEditor, CanEdit: true,
	}
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.Update, http.MethodPatch, `{"title": "Renamed"}`, strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("collaborator patch: status = %d, want 403", rec.Code)
	}

	rec = doRequest(h.Update, http.MethodPatch, `{"title": "Renamed"}`, ownerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("owner patch: status = %d, want 200", rec.Code)
	}
	if repo.projects[projectID].Title != "Renamed" {
		t.Fatalf("title = %q", repo.projects[projectID].Title)
	}
}

func TestToggleCollaboration_EmptyBodyFlips(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.ToggleCollaboration, http.MethodPost, "", ownerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !repo.projects[projectID].IsCollaborative {
		t.Fatal("flag did not flip on")
	}

	rec = doRequest(h.ToggleCollaboration, http.MethodPost, `{"enabled": true}`, ownerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !repo.projects[projectID].IsCollaborative {
		t.Fatal("explicit enabled=true should keep the flag on")
	}
}

func TestJoin_GatedOnCollaborativeFlag(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	h := newProjectHandler(repo, &statsChapterRepo{})

	rec := doRequest(h.Join, http.MethodPost, "", strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("closed project: status = %d, want 403", rec.Code)
	}

	repo.projects[projectID].IsCollaborative = true
	rec = doRequest(h.Join, http.MethodPost, "", strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("join: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	collab, ok := repo.collabs[collabKey(projectID, strangerID)]
	if !ok {
		t.Fatal("collaborator not added")
	}
	if collab.Role != models.RoleContributor || !collab.CanEdit {
		t.Fatalf("collaborator = %+v", collab)
	}

	// Joining again is idempotent.
	rec = doRequest(h.Join, http.MethodPost, "", strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("rejoin: status = %d, want 200", rec.Code)
	}
}
