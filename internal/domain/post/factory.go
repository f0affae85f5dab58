package post

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateInput(in CreateInput, now time.Time) Post {
	return Post{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Content:   in.Content,
		Image:     NormalizeImage(in.Image),
		Author:    in.Author,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: nil,
	}
}

// ToCreateInput trims the payload and attaches the author.
func (r CreatePostRequest) ToCreateInput(authorID, authorName string) CreateInput {
	return CreateInput{
		Title:    strings.TrimSpace(r.Title),
		Content:  strings.TrimSpace(r.Content),
		Image:    NormalizeImage(r.Image),
		Author:   authorName,
		AuthorID: authorID,
	}
}

func (r UpdatePostRequest) ToUpdateFields() UpdateFields {
	var f UpdateFields

	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		f.Title = &t
	}

	if r.Content != nil {
		c := strings.TrimSpace(*r.Content)
		f.Content = &c
	}

	if r.Image != nil {
		img := strings.TrimSpace(*r.Image)
		f.Image = &img
	}

	return f
}

// NormalizeImage trims an image reference and maps blank to nil.
func NormalizeImage(image *string) *string {
	if image == nil {
		return nil
	}

	v := strings.TrimSpace(*image)
	if v == "" {
		return nil
	}

	return &v
}
