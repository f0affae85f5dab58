package post

import (
	"errors"
	"time"
)

// Post is the full (detail) view of a stored post.
type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Image     *string    `json:"image"`
	Author    string     `json:"author"`
	AuthorID  string     `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// Summary is the list projection: no content, no author id.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Image     *string   `json:"image"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Post) Summary() Summary {
	return Summary{
		ID:        p.ID,
		Title:     p.Title,
		Image:     p.Image,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
	}
}

var (
	ErrNotFound  = errors.New("post not found")
	ErrInvalidID = errors.New("invalid post id")
)

// CreateInput is what a store needs to persist a new post. Author fields come
// from the caller identity, never from the request body.
type CreateInput struct {
	Title    string
	Content  string
	Image    *string
	Author   string
	AuthorID string
}

// UpdateFields holds the fields to merge into an existing post. A nil field is
// left untouched; Image pointing at "" clears the image.
type UpdateFields struct {
	Title   *string
	Content *string
	Image   *string
}

func (f UpdateFields) Empty() bool {
	return f.Title == nil && f.Content == nil && f.Image == nil
}

type CreatePostRequest struct {
	Title   string  `json:"title" validate:"required,trimmin=5"`
	Content string  `json:"content" validate:"required,trimmin=50"`
	Image   *string `json:"image" validate:"omitempty,imageref"`
}

// a partial update payload, any subset of the fields may be sent.
type UpdatePostRequest struct {
	Title   *string `json:"title" validate:"omitnil,trimmin=5"`
	Content *string `json:"content" validate:"omitnil,trimmin=50"`
	Image   *string `json:"image" validate:"omitempty,imageref"`
}
