package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
	require.ErrorIs(t, VerifyPassword("wrong password", hash), ErrPasswordMismatch)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	t.Parallel()

	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	t.Parallel()

	require.Error(t, VerifyPassword("pw", "not-a-hash"))
	require.Error(t, VerifyPassword("pw", "$argon2id$v=19$m=65536,t=3,p=2$missingkey"))
}

func TestGenerateNonce(t *testing.T) {
	t.Parallel()

	a, err := GenerateNonce(NonceSize)
	require.NoError(t, err)
	b, err := GenerateNonce(NonceSize)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)

	// Zero or negative sizes fall back to the default.
	c, err := GenerateNonce(0)
	require.NoError(t, err)
	require.NotEmpty(t, c)
}
