package auth

// Identity is a verified caller: who they are and the name posts are signed with.
type Identity struct {
	ID    string
	Name  string
	Email string
}

func IdentityFromClaims(c *Claims) Identity {
	return Identity{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
	}
}
