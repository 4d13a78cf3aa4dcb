package models

import (
	"time"
)

// Character belongs to one project; names are unique within a project.
type Character struct {
	ID            string    `json:"id" db:"id"`
	ProjectID     string    `json:"project_id" db:"project_id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description,omitempty" db:"description"`
	Role          string    `json:"role,omitempty" db:"role"` // e.g. Protagonist, Antagonist, Supporting
	Age           *int      `json:"age,omitempty" db:"age"`
	Appearance    string    `json:"appearance,omitempty" db:"appearance"`
	Personality   string    `json:"personality,omitempty" db:"personality"`
	Background    string    `json:"background,omitempty" db:"background"`
	Goals         string    `json:"goals,omitempty" db:"goals"`
	Conflicts     string    `json:"conflicts,omitempty" db:"conflicts"`
	Relationships string    `json:"relationships,omitempty" db:"relationships"`
	Notes         string    `json:"notes,omitempty" db:"notes"`
	ImageRef      *string   `json:"image_ref,omitempty" db:"image_ref"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
