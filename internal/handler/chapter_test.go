package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"inkwell/internal/domain/models"
	"inkwell/internal/domain/repositories"
	"inkwell/internal/service/access"
	"inkwell/internal/service/ordering"
)

// listChapterRepo extends the stats fake with canned chapter metadata.
type listChapterRepo struct {
	statsChapterRepo
	meta []models.Chapter
}

func (f *listChapterRepo) ListMeta(context.Context, string) ([]models.Chapter, error) {
	return f.meta, nil
}

type passthroughTx struct{}

func (passthroughTx) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

func newChapterHandler(projects *fakeProjectRepo, chapters repositories.ChapterRepository) *ChapterHandler {
	logger := discardLogger()
	engine := ordering.NewEngine(chapters, passthroughTx{}, logger)
	return NewChapterHandler(chapters, engine, nil, access.NewMediator(projects, logger), logger)
}

func TestChapterList_SummariesAndTotals(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	chapters := &listChapterRepo{
		statsChapterRepo: statsChapterRepo{totalWords: 900},
		meta: []models.Chapter{
			{ID: "c1", Title: "One", Order: 0, WordCount: 400},
			{ID: "c2", Title: "Two", Order: 1, WordCount: 500},
		},
	}
	h := newChapterHandler(repo, chapters)

	rec := doRequest(h.List, http.MethodGet, "", ownerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// The sidebar contract names these keys exactly.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"chapters", "total_chapters", "project_word_count"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing key %q; got %s", key, rec.Body.String())
		}
	}

	var body struct {
		Chapters         []models.ChapterSummary `json:"chapters"`
		TotalChapters    int                     `json:"total_chapters"`
		ProjectWordCount int                     `json:"project_word_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.TotalChapters != 2 {
		t.Errorf("total_chapters = %d, want 2", body.TotalChapters)
	}
	if body.ProjectWordCount != 900 {
		t.Errorf("project_word_count = %d, want 900", body.ProjectWordCount)
	}
	if len(body.Chapters) != 2 || body.Chapters[0].Title != "One" || body.Chapters[1].Order != 1 {
		t.Errorf("chapters = %+v", body.Chapters)
	}
}

func TestChapterList_DeniedForStranger(t *testing.T) {
	repo := newFakeProjectRepo()
	seedProject(repo, false, false)
	h := newChapterHandler(repo, &listChapterRepo{})

	rec := doRequest(h.List, http.MethodGet, "", strangerID, map[string]string{"id": projectID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
