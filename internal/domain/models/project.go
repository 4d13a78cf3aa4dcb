package models

import (
	"time"
)

// Project is a bounded writing effort owned by one author. It aggregates
// an ordered list of chapters and a character roster, and may be opened
// to collaborators via the collaborative flag.
type Project struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	AuthorID        string    `json:"author_id" db:"author_id"`
	AuthorName      string    `json:"author_name" db:"author_name"` // display name, denormalized from the identity provider
	Genre           string    `json:"genre,omitempty" db:"genre"`
	TargetWordCount int       `json:"target_word_count" db:"target_word_count"`
	IsCollaborative bool      `json:"is_collaborative" db:"is_collaborative"`
	IsPublic        bool      `json:"is_public" db:"is_public"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Collaborator roles.
const (
	RoleEditor      = "editor"
	RoleContributor = "contributor"
	RoleReviewer    = "reviewer"
)

// ProjectCollaborator is the through-relation between projects and
// users, carrying per-relation capability flags.
type ProjectCollaborator struct {
	ProjectID string    `json:"project_id" db:"project_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CanEdit   bool      `json:"can_edit" db:"can_edit"`
	CanDelete bool      `json:"can_delete" db:"can_delete"`
	CanInvite bool      `json:"can_invite" db:"can_invite"`
	AddedAt   time.Time `json:"added_at" db:"added_at"`
}

// ProjectStats are the aggregate numbers the dashboard and chapter
// listing need alongside a project.
type ProjectStats struct {
	ChapterCount   int `json:"chapter_count"`
	TotalWordCount int `json:"total_word_count"`
}

// ProgressPercent reports progress against the target word budget,
// capped at 100.
func (p *Project) ProgressPercent(totalWords int) float64 {
	if p.TargetWordCount <= 0 {
		return 0
	}
	pct := float64(totalWords) / float64(p.TargetWordCount) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
