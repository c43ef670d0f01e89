package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Password(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hashed, err := h.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hashed)

	ok, err := h.ComparePassword(hashed, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.ComparePassword(hashed, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.ComparePassword("not-a-bcrypt-hash", "x")
	assert.Error(t, err)
}

func TestHasher_RefreshTokenBeyondBcryptLimit(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	prefix := strings.Repeat("x", 100)
	a, b := prefix+"a", prefix+"b"

	hashed, err := h.HashRefreshToken(a)
	require.NoError(t, err)

	assert.True(t, h.CompareRefreshToken(hashed, a))
	assert.False(t, h.CompareRefreshToken(hashed, b))
	assert.False(t, h.CompareRefreshToken("garbage", a))
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(1).cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).cost)
}

func TestHasher_CompareDummy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	h.CompareDummy("anything")
	assert.NotEmpty(t, h.dummy)
}
