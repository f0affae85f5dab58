package security

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for stored passwords.
const PasswordCost = 12

// MaxPasswordBytes is the longest input bcrypt will hash.
const MaxPasswordBytes = 72

// Hash password hashes a plain text password with bcrypt at PasswordCost.
func HashPassword(plain string) (string, error) {
	return HashPasswordCost(plain, PasswordCost)
}

func HashPasswordCost(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// helper that compares a bcrypt hash with a plaintext password.

func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
