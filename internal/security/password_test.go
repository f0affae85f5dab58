package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
	assert.NotEqual(t, "s3cret!", hash)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPasswordCost("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cret!"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}
