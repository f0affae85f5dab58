// Package repotest holds behavior checks shared by every post and account
// store implementation.
package repotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PostRepository interface {
	List(ctx context.Context) ([]post.Summary, error)
	Search(ctx context.Context, term string) ([]post.Summary, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	Create(ctx context.Context, in post.CreateInput) (post.Post, error)
	Update(ctx context.Context, id string, fields post.UpdateFields) (post.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a account.Account) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByID(ctx context.Context, id string) (account.Account, error)
}

func strPtr(s string) *string { return &s }

func longContent(word string) string {
	return "This post talks about " + word + " " + strings.Repeat("and keeps going ", 4)
}

// idSpellings lists forms uuid.Parse accepts for the canonical id.
func idSpellings(id string) []string {
	return []string{
		id,
		strings.ToUpper(id),
		"{" + id + "}",
		"urn:uuid:" + id,
		strings.ReplaceAll(id, "-", ""),
	}
}

// RunPostRepository exercises a fresh, empty store returned by newRepo.
func RunPostRepository(t *testing.T, newRepo func(t *testing.T) PostRepository) {
	t.Run("create_then_get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		authorID := uuid.NewString()

		created, err := repo.Create(ctx, post.CreateInput{
			Title:    "Hello All",
			Content:  longContent("gophers"),
			Image:    strPtr("https://example.com/a.png"),
			Author:   "Ada",
			AuthorID: authorID,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Nil(t, created.UpdatedAt)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello All", got.Title)
		assert.Equal(t, longContent("gophers"), got.Content)
		require.NotNil(t, got.Image)
		assert.Equal(t, "https://example.com/a.png", *got.Image)
		assert.Equal(t, "Ada", got.Author)
		assert.Equal(t, authorID, got.AuthorID)
		assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Millisecond)
		assert.Nil(t, got.UpdatedAt)
	})

	t.Run("create_without_image", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(context.Background(), post.CreateInput{
			Title: "No image here", Content: longContent("text"), Author: "Ada", AuthorID: uuid.NewString(),
		})
		require.NoError(t, err)

		got, err := repo.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Image)
	})

	t.Run("get_missing_and_malformed", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, post.ErrNotFound)

		_, err = repo.GetByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, post.ErrInvalidID)
	})

	t.Run("update_merges_fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		authorID := uuid.NewString()

		created, err := repo.Create(ctx, post.CreateInput{
			Title: "Original title", Content: longContent("origins"), Image: strPtr("https://example.com/a.png"),
			Author: "Ada", AuthorID: authorID,
		})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, post.UpdateFields{Title: strPtr("Edited title")})
		require.NoError(t, err)
		assert.Equal(t, "Edited title", updated.Title)
		assert.Equal(t, longContent("origins"), updated.Content)
		require.NotNil(t, updated.Image)
		assert.Equal(t, authorID, updated.AuthorID)
		assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)
		require.NotNil(t, updated.UpdatedAt)
		assert.False(t, updated.UpdatedAt.Before(created.CreatedAt.Truncate(time.Millisecond)))

		first := *updated.UpdatedAt

		cleared, err := repo.Update(ctx, created.ID, post.UpdateFields{Image: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, cleared.Image)
		assert.Equal(t, "Edited title", cleared.Title)
		require.NotNil(t, cleared.UpdatedAt)
		assert.False(t, cleared.UpdatedAt.Before(first))
	})

	t.Run("id_spellings_address_same_post", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, post.CreateInput{
			Title: "Spelled out", Content: longContent("spellings"), Author: "Ada", AuthorID: uuid.NewString(),
		})
		require.NoError(t, err)

		for _, id := range idSpellings(created.ID) {
			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, created.ID, got.ID, id)
		}

		updated, err := repo.Update(ctx, "{"+created.ID+"}", post.UpdateFields{Title: strPtr("Respelled")})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Respelled", updated.Title)

		deleted, err := repo.Delete(ctx, "urn:uuid:"+created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("update_missing_and_malformed", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(context.Background(), uuid.NewString(), post.UpdateFields{Title: strPtr("Whatever")})
		assert.ErrorIs(t, err, post.ErrNotFound)

		_, err = repo.Update(context.Background(), "123", post.UpdateFields{Title: strPtr("Whatever")})
		assert.ErrorIs(t, err, post.ErrInvalidID)
	})

	t.Run("delete_is_idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Create(ctx, post.CreateInput{
			Title: "Short lived", Content: longContent("endings"), Author: "Ada", AuthorID: uuid.NewString(),
		})
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = repo.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, post.ErrNotFound)

		_, err = repo.Delete(ctx, "nope")
		assert.ErrorIs(t, err, post.ErrInvalidID)
	})

	t.Run("list_newest_first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var ids []string
		for _, title := range []string{"First post", "Second post", "Third post"} {
			p, err := repo.Create(ctx, post.CreateInput{
				Title: title, Content: longContent(title), Author: "Ada", AuthorID: uuid.NewString(),
			})
			require.NoError(t, err)
			ids = append(ids, p.ID)
			time.Sleep(5 * time.Millisecond)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
		assert.Equal(t, "Third post", list[0].Title)
	})

	t.Run("search_is_case_insensitive_subset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mk := func(title, content string) {
			_, err := repo.Create(ctx, post.CreateInput{Title: title, Content: content, Author: "Ada", AuthorID: uuid.NewString()})
			require.NoError(t, err)
		}
		mk("Learning GoLang", longContent("channels"))
		mk("Gardening notes", longContent("golang-shaped tomatoes"))
		mk("Cooking diary", longContent("pasta"))
		mk("Percent 100% sure", longContent("symbols"))

		hits, err := repo.Search(ctx, "GOLANG")
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		allIDs := map[string]bool{}
		for _, s := range all {
			allIDs[s.ID] = true
		}
		for _, h := range hits {
			assert.True(t, allIDs[h.ID], "search hit must also be listed")
			full, err := repo.GetByID(ctx, h.ID)
			require.NoError(t, err)
			assert.True(t,
				strings.Contains(strings.ToLower(full.Title), "golang") ||
					strings.Contains(strings.ToLower(full.Content), "golang"))
		}

		literal, err := repo.Search(ctx, "100%")
		require.NoError(t, err)
		assert.Len(t, literal, 1)

		none, err := repo.Search(ctx, ".*")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

// RunAccountRepository exercises a fresh, empty account store.
func RunAccountRepository(t *testing.T, newRepo func(t *testing.T) AccountRepository) {
	newAccount := func(email string) account.Account {
		return account.Account{
			ID:           uuid.NewString(),
			Name:         "Ada",
			Email:        email,
			PasswordHash: "$2a$04$hash",
			CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		}
	}

	t.Run("create_and_lookup", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := newAccount("ada@example.com")
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)

		byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, a.ID, byEmail.ID)
		assert.Equal(t, a.PasswordHash, byEmail.PasswordHash)

		byID, err := repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", byID.Email)
	})

	t.Run("lookup_by_id_spelling", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := newAccount("spell@example.com")
		_, err := repo.Create(ctx, a)
		require.NoError(t, err)

		for _, id := range idSpellings(a.ID) {
			got, err := repo.GetByID(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, a.ID, got.ID, id)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Create(ctx, newAccount("dup@example.com"))
		require.NoError(t, err)

		_, err = repo.Create(ctx, newAccount("dup@example.com"))
		assert.ErrorIs(t, err, account.ErrDuplicateEmail)
	})

	t.Run("missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, account.ErrNotFound)

		_, err = repo.GetByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, account.ErrNotFound)

		_, err = repo.GetByID(context.Background(), "bad-id")
		assert.ErrorIs(t, err, account.ErrInvalidID)
	})
}
