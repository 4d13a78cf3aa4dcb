package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestErrorClassification(t *testing.T) {
	unique := &pgconn.PgError{Code: codeUniqueViolation}
	fk := &pgconn.PgError{Code: codeForeignKeyViolation}

	tests := []struct {
		name string
		err  error
		fn   func(error) bool
		want bool
	}{
		{"unique violation", unique, isUniqueViolation, true},
		{"wrapped unique violation", fmt.Errorf("insert chapter: %w", unique), isUniqueViolation, true},
		{"foreign key is not unique", fk, isUniqueViolation, false},
		{"foreign key violation", fk, isForeignKeyViolation, true},
		{"no rows", pgx.ErrNoRows, isNoRows, true},
		{"wrapped no rows", fmt.Errorf("get project: %w", pgx.ErrNoRows), isNoRows, true},
		{"plain error matches nothing", errors.New("boom"), isUniqueViolation, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
