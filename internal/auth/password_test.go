package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "password1", hash)

	assert.NoError(t, ComparePassword(hash, "password1"))
	assert.ErrorIs(t, ComparePassword(hash, "password2"), ErrPasswordMismatch)
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	hash, err := HashPassword("password1", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73), bcrypt.MinCost)
	assert.Error(t, err)
}

func TestComparePassword_BadHash(t *testing.T) {
	err := ComparePassword("not-a-bcrypt-hash", "password1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}
