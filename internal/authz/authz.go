// Package authz holds the ownership rules for post mutations.
package authz

import (
	"github.com/geocoder89/blogspace/internal/auth"
	"github.com/geocoder89/blogspace/internal/domain/post"
)

// CanMutate reports whether caller may edit or delete p. Only the author may.
func CanMutate(p post.Post, caller *auth.Identity) bool {
	if caller == nil || caller.ID == "" {
		return false
	}

	return caller.ID == p.AuthorID
}
