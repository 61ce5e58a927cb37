package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	token, err := svc.Sign("652f1c9e8b3f2a0001a4d2c7")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "652f1c9e8b3f2a0001a4d2c7", subject)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("test-secret")
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	minter, err := NewTokenService("secret-a")
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b")
	require.NoError(t, err)

	token, err := minter.Sign("user-1")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("")
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)

	assert.True(t, CheckPassword("Str0ng!Pass", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)
	second, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
