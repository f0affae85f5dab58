// Package credentials owns account creation and password checks.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/security"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AccountRepository interface {
	Create(ctx context.Context, a account.Account) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
}

type Store struct {
	repo AccountRepository
	cost int
	now  func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Store)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

func NewStore(repo AccountRepository, opts ...Option) *Store {
	s := &Store{
		repo: repo,
		cost: security.PasswordCost,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount hashes the password and inserts the account. The email is
// stored exactly as given. Passwords over security.MaxPasswordBytes bytes
// yield account.ErrPasswordTooLong.
func (s *Store) CreateAccount(ctx context.Context, name, email, password string) (account.Summary, error) {
	if len(password) > security.MaxPasswordBytes {
		return account.Summary{}, account.ErrPasswordTooLong
	}

	hash, err := security.HashPasswordCost(password, s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return account.Summary{}, account.ErrPasswordTooLong
		}
		return account.Summary{}, fmt.Errorf("hash password: %w", err)
	}

	a, err := s.repo.Create(ctx, account.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return account.Summary{}, account.ErrDuplicateEmail
		}
		return account.Summary{}, fmt.Errorf("create account: %w", err)
	}

	return a.Summary(), nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for a
// wrong password alike. Unknown emails still pay for one bcrypt compare.
func (s *Store) Authenticate(ctx context.Context, email, password string) (account.Summary, error) {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			_ = security.CheckPassword(s.dummy(), password)
			return account.Summary{}, account.ErrInvalidCredentials
		}
		return account.Summary{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := security.CheckPassword(a.PasswordHash, password); err != nil {
		return account.Summary{}, account.ErrInvalidCredentials
	}

	return a.Summary(), nil
}

// GetAccount returns nil, nil when no account has the id.
func (s *Store) GetAccount(ctx context.Context, id string) (*account.Summary, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			return nil, nil
		case errors.Is(err, account.ErrInvalidID):
			return nil, account.ErrInvalidID
		default:
			return nil, fmt.Errorf("get account: %w", err)
		}
	}

	sum := a.Summary()
	return &sum, nil
}

// EnsureAccount creates the account unless the email is already taken.
// Returns true when a new account was created.
func (s *Store) EnsureAccount(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}

	_, err := s.CreateAccount(ctx, name, email, password)
	if errors.Is(err, account.ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := security.HashPasswordCost("blogspace-timing-dummy", s.cost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
