package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"go":       "%go%",
		"100%":     `%100\%%`,
		"snake_ok": `%snake\_ok%`,
		`a\b`:      `%a\\b%`,
	}

	for in, want := range tests {
		if got := containsPattern(in); got != want {
			t.Errorf("containsPattern(%q) = %q, want %q", in, got, want)
		}
	}
}
