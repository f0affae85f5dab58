package postgres

import (
	"errors"
	"strings"

	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom != nil {
		return prom.ObserveDB(op, fn)
	}
	return fn()
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// canonicalID parses id and returns its lowercase hyphenated form, so braced,
// urn and bare-hex spellings address the same record.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a literal term into an ILIKE substring pattern.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
