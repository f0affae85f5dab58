package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{pool: pool, prom: prom}
}

// Create relies on the accounts_email_key unique constraint; two concurrent
// sign-ups with the same email cannot both succeed.
func (r *AccountsRepo) Create(ctx context.Context, a account.Account) (account.Account, error) {
	err := observe(r.prom, "accounts.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO accounts (id, name, email, password_hash, created_at)
			VALUES ($1,$2,$3,$4,$5)`,
			a.ID, a.Name, a.Email, a.PasswordHash, a.CreatedAt,
		)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return account.Account{}, account.ErrDuplicateEmail
		}
		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return r.getOne(ctx, "accounts.get_by_email", `WHERE email = $1`, email)
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	id, valid := canonicalID(id)
	if !valid {
		return account.Account{}, account.ErrInvalidID
	}
	return r.getOne(ctx, "accounts.get_by_id", `WHERE id = $1`, id)
}

func (r *AccountsRepo) getOne(ctx context.Context, op, where string, arg string) (account.Account, error) {
	var a account.Account

	err := observe(r.prom, op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, created_at
			FROM accounts `+where,
			arg,
		).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}

	return a, nil
}
