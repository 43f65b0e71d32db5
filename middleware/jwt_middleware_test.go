package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWT_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateJWT("64a1f0c2e3b4d5a6f7890123", "client@example.com", "client")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*JwtCustomClaims)
	require.True(t, ok)
	assert.Equal(t, "64a1f0c2e3b4d5a6f7890123", claims.UserID)
	assert.Equal(t, "client@example.com", claims.Email)
	assert.Equal(t, "client", claims.Role)

	// Expiry sits 30 days out
	expectedExpiry := time.Now().Add(TokenLifetime).Unix()
	assert.InDelta(t, expectedExpiry, claims.ExpiresAt, 5)
}

func TestGenerateJWT_WrongSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	tokenString, err := GenerateJWT("64a1f0c2e3b4d5a6f7890123", "client@example.com", "client")
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret"), nil
	})
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &JwtCustomClaims{
		UserID: "64a1f0c2e3b4d5a6f7890123",
		Email:  "client@example.com",
		Role:   "client",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-1 * time.Hour).Unix(),
			IssuedAt:  time.Now().Add(-31 * 24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.Error(t, err)
	if parsed != nil {
		assert.False(t, parsed.Valid)
	}
}

func TestJwtCustomClaims_Valid(t *testing.T) {
	valid := JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	assert.NoError(t, valid.Valid())

	expired := JwtCustomClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	assert.Error(t, expired.Valid())
}
