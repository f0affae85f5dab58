package account

import (
	"errors"
	"time"
)

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the public view of an account.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a Account) Summary() Summary {
	return Summary{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidID          = errors.New("invalid account id")
	ErrDuplicateEmail     = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password too long")
)

type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
