package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/geocoder89/blogspace/internal/repo/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostsRepo_Contract(t *testing.T) {
	repotest.RunPostRepository(t, func(t *testing.T) repotest.PostRepository {
		return NewPostsRepo()
	})
}

func TestAccountsRepo_Contract(t *testing.T) {
	repotest.RunAccountRepository(t, func(t *testing.T) repotest.AccountRepository {
		return NewAccountsRepo()
	})
}

func TestPostsRepo_ReturnedPostsAreCopies(t *testing.T) {
	repo := NewPostsRepo()
	img := "https://example.com/a.png"

	p, err := repo.Create(context.Background(), post.CreateInput{Title: "Hello", Content: "c", Image: &img, AuthorID: uuid.NewString()})
	require.NoError(t, err)

	*p.Image = "mutated"

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", *got.Image)
}

func TestPostsRepo_SameTimestampOrdersByID(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := NewPostsRepo().WithClock(func() time.Time { return fixed })

	for i := 0; i < 5; i++ {
		_, err := repo.Create(context.Background(), post.CreateInput{Title: "Same time", Content: "c", AuthorID: uuid.NewString()})
		require.NoError(t, err)
	}

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	for i := 1; i < len(list); i++ {
		assert.Greater(t, list[i-1].ID, list[i].ID)
	}
}

func TestAccountsRepo_ConcurrentDuplicateEmail(t *testing.T) {
	repo := NewAccountsRepo()

	var ok atomic.Int32
	var dup atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), account.Account{ID: uuid.NewString(), Email: "race@example.com"})
			switch err {
			case nil:
				ok.Add(1)
			case account.ErrDuplicateEmail:
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(19), dup.Load())
}
