package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	Configure("super-secret", time.Hour)

	tok, err := GenerateToken("user-123", "employer", true)
	require.NoError(t, err)

	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "employer", claims.UserType)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestParseToken_Expired(t *testing.T) {
	Configure("secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID:    "u1",
		TokenType: tokenTypeAccess,
	})
	tok, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	Configure("right-secret", time.Hour)
	tok, err := GenerateToken("u2", "candidate", false)
	require.NoError(t, err)

	Configure("wrong-secret", time.Hour)
	_, err = ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	Configure("secret", time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u3", TokenType: tokenTypeAccess})
	tok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	Configure("secret", time.Hour)

	_, err := ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken_Unique(t *testing.T) {
	a, err := NewRefreshToken()
	require.NoError(t, err)
	b, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword("long enough"))
}
