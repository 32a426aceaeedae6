package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pa55word")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-pa55word", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pa55word"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pa55word"))
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := HashPassword("same input")
	require.NoError(t, err)
	b, err := HashPassword("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken(testSecret, 42, "learner@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "learner@example.com", claims.Email)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := CreateToken(testSecret, 42, "learner@example.com", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("other-secret"), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	token, err := CreateToken(testSecret, 42, "learner@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	for _, tokenString := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifyToken(testSecret, tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tokenString)
	}
}
