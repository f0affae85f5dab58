package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/google/uuid"
)

type PostsRepo struct {
	mu    sync.RWMutex
	items map[string]post.Post
	now   func() time.Time
}

func NewPostsRepo() *PostsRepo {
	return &PostsRepo{
		items: make(map[string]post.Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock swaps the time source; tests use it to control ordering.
func (r *PostsRepo) WithClock(now func() time.Time) *PostsRepo {
	r.now = now
	return r
}

func (r *PostsRepo) Create(_ context.Context, in post.CreateInput) (post.Post, error) {
	p := post.NewFromCreateInput(in, r.now())

	r.mu.Lock()
	r.items[p.ID] = clonePost(p)
	r.mu.Unlock()

	return p, nil
}

func (r *PostsRepo) List(_ context.Context) ([]post.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.summaries(func(post.Post) bool { return true }), nil
}

func (r *PostsRepo) Search(_ context.Context, term string) ([]post.Summary, error) {
	needle := strings.ToLower(term)

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.summaries(func(p post.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle)
	}), nil
}

func (r *PostsRepo) GetByID(_ context.Context, id string) (post.Post, error) {
	id, valid := canonicalID(id)
	if !valid {
		return post.Post{}, post.ErrInvalidID
	}

	r.mu.RLock()
	p, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	return clonePost(p), nil
}

func (r *PostsRepo) Update(_ context.Context, id string, fields post.UpdateFields) (post.Post, error) {
	id, valid := canonicalID(id)
	if !valid {
		return post.Post{}, post.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return post.Post{}, post.ErrNotFound
	}

	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Content != nil {
		p.Content = *fields.Content
	}
	if fields.Image != nil {
		p.Image = post.NormalizeImage(fields.Image)
	}

	now := r.now()
	p.UpdatedAt = &now

	r.items[id] = clonePost(p)

	return clonePost(p), nil
}

func (r *PostsRepo) Delete(_ context.Context, id string) (bool, error) {
	id, valid := canonicalID(id)
	if !valid {
		return false, post.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}

	delete(r.items, id)

	return true, nil
}

// summaries must be called with the read lock held.
func (r *PostsRepo) summaries(keep func(post.Post) bool) []post.Summary {
	matched := make([]post.Post, 0, len(r.items))
	for _, p := range r.items {
		if keep(p) {
			matched = append(matched, p)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	out := make([]post.Summary, 0, len(matched))
	for _, p := range matched {
		out = append(out, clonePost(p).Summary())
	}

	return out
}

// stored posts must not share pointers with callers.
func clonePost(p post.Post) post.Post {
	if p.Image != nil {
		img := *p.Image
		p.Image = &img
	}
	if p.UpdatedAt != nil {
		u := *p.UpdatedAt
		p.UpdatedAt = &u
	}
	return p
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
