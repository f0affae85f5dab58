package authz

import (
	"testing"

	"github.com/geocoder89/blogspace/internal/auth"
	"github.com/geocoder89/blogspace/internal/domain/post"
)

func TestCanMutate(t *testing.T) {
	p := post.Post{ID: "p-1", AuthorID: "owner-1", Author: "Owner"}

	tests := []struct {
		name   string
		caller *auth.Identity
		want   bool
	}{
		{name: "owner", caller: &auth.Identity{ID: "owner-1"}, want: true},
		{name: "other_user", caller: &auth.Identity{ID: "someone-else", Name: "Owner"}, want: false},
		{name: "no_identity", caller: nil, want: false},
		{name: "empty_id", caller: &auth.Identity{Name: "Owner"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(p, tt.caller); got != tt.want {
				t.Fatalf("CanMutate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanMutate_PostWithoutAuthorIsLocked(t *testing.T) {
	p := post.Post{ID: "p-1"}

	if CanMutate(p, &auth.Identity{}) {
		t.Fatalf("expected a post with no author to reject an identity with no id")
	}
}
