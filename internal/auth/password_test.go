package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("securePassword123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "securePassword123", hash)
	assert.NoError(t, ComparePassword(hash, "securePassword123"))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("securePassword123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("securePassword123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same password should produce different hashes due to salt")
}

func TestHashPassword_OutOfRangeCostUsesDefault(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestComparePassword_Rejects(t *testing.T) {
	hash, err := HashPassword("securePassword123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.Error(t, ComparePassword(hash, "wrongPassword456"))
	assert.Error(t, ComparePassword(hash, ""))
	assert.Error(t, ComparePassword("not-a-valid-bcrypt-hash", "password"))
	assert.Error(t, ComparePassword("securePassword123", "securePassword123"), "plaintext must never match")
}
