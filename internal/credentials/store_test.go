package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/repo/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore() *Store {
	return NewStore(memory.NewAccountsRepo(), WithCost(bcrypt.MinCost))
}

func TestStore_CreateAccount(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	sum, err := s.CreateAccount(ctx, "  Ada  ", "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = uuid.Parse(sum.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", sum.Name)
	assert.Equal(t, "ada@example.com", sum.Email)
	assert.False(t, sum.CreatedAt.IsZero())

	_, err = s.CreateAccount(ctx, "Ada Again", "ada@example.com", "other12")
	assert.ErrorIs(t, err, account.ErrDuplicateEmail)
}

func TestStore_CreateAccountKeepsEmailCase(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Ada", "Ada@Example.com", "secret1")
	require.NoError(t, err)

	// Email comparison is exact; a different case is a different account.
	_, err = s.CreateAccount(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
}

func TestStore_Authenticate(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ada@example.com", "secret1", nil},
		{"wrong password", "ada@example.com", "nope123", account.ErrInvalidCredentials},
		{"unknown email", "bob@example.com", "secret1", account.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Authenticate(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
		})
	}
}

func TestStore_GetAccount(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, *got)

	missing, err := s.GetAccount(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.GetAccount(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, account.ErrInvalidID)
}

func TestStore_EnsureAccount(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	created, err := s.EnsureAccount(ctx, "Admin", "admin@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAccount(ctx, "Admin", "admin@example.com", "secret1")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = s.EnsureAccount(ctx, "", "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

type failingRepo struct{ err error }

func (f failingRepo) Create(context.Context, account.Account) (account.Account, error) {
	return account.Account{}, f.err
}
func (f failingRepo) GetByEmail(context.Context, string) (account.Account, error) {
	return account.Account{}, f.err
}
func (f failingRepo) GetByID(context.Context, string) (account.Account, error) {
	return account.Account{}, f.err
}

func TestStore_StorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewStore(failingRepo{err: boom}, WithCost(bcrypt.MinCost))
	ctx := context.Background()

	_, err := s.CreateAccount(ctx, "Ada", "ada@example.com", "secret1")
	assert.ErrorIs(t, err, boom)

	_, err = s.Authenticate(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, account.ErrInvalidCredentials)

	_, err = s.GetAccount(ctx, uuid.NewString())
	assert.ErrorIs(t, err, boom)
}

func TestStore_CreateAccountPasswordByteLimit(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"at limit", strings.Repeat("a", 72), nil},
		{"one byte over", strings.Repeat("a", 73), account.ErrPasswordTooLong},
		{"multibyte over", strings.Repeat("日", 25), account.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			_, err := s.CreateAccount(context.Background(), "Ada", "ada@example.com", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStore_PasswordTooLongNeverReachesRepo(t *testing.T) {
	s := NewStore(failingRepo{err: errors.New("must not be called")}, WithCost(bcrypt.MinCost))

	_, err := s.CreateAccount(context.Background(), "Ada", "ada@example.com", strings.Repeat("x", 80))
	assert.ErrorIs(t, err, account.ErrPasswordTooLong)
}
