package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTUtil_GenerateToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, 24*time.Hour)
	userID := 1

	tokenString, expiresAt, err := jwtUtil.GenerateToken(userID, TokenTypeAccess)

	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTUtil_GenerateToken_UnknownType(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)

	_, _, err := jwtUtil.GenerateToken(1, "session")
	assert.Error(t, err)
}

func TestJWTUtil_GenerateTokenPair(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", 15*time.Minute, 7*24*time.Hour)

	pair, err := jwtUtil.GenerateTokenPair(42)
	require.NoError(t, err)

	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	access, err := jwtUtil.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, 42, access.UserID)

	refresh, err := jwtUtil.ValidateToken(pair.RefreshToken, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, 42, refresh.UserID)
}

func TestJWTUtil_TokensAreUniqueWithinSameSecond(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)

	first, err := jwtUtil.GenerateTokenPair(7)
	require.NoError(t, err)
	second, err := jwtUtil.GenerateTokenPair(7)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestJWTUtil_ValidateToken_InvalidToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)

	_, err := jwtUtil.ValidateToken("invalid.token.string", TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_ExpiredToken(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", -time.Minute, time.Hour) // Access tokens expire in the past

	tokenString, _, err := jwtUtil.GenerateToken(1, TokenTypeAccess)
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTUtil_ValidateToken_WrongSecret(t *testing.T) {
	jwtUtil1 := NewJWTUtil("secret1", time.Hour, time.Hour)
	jwtUtil2 := NewJWTUtil("secret2", time.Hour, time.Hour)

	tokenString, _, _ := jwtUtil1.GenerateToken(1, TokenTypeAccess)

	_, err := jwtUtil2.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
}

func TestJWTUtil_ValidateToken_Tampered(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)
	tokenString, _, err := jwtUtil.GenerateToken(1, TokenTypeAccess)
	require.NoError(t, err)

	parts := strings.Split(tokenString, ".")
	require.Len(t, parts, 3)
	// Swap in the payload of a token for another user, keeping the old signature
	other, _, err := jwtUtil.GenerateToken(2, TokenTypeAccess)
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	_, err = jwtUtil.ValidateToken(forged, TokenTypeAccess)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestJWTUtil_ValidateToken_WrongType(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)
	pair, err := jwtUtil.GenerateTokenPair(1)
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(pair.RefreshToken, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = jwtUtil.ValidateToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTUtil_ValidateToken_InvalidSigningMethod(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)
	// Same secret, but HS384 instead of HS256
	claims := &JWTClaims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, claims)
	tokenString, _ := token.SignedString([]byte("secret"))

	_, err := jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected signing method")
}

func TestJWTUtil_ValidateToken_MissingExpiry(t *testing.T) {
	jwtUtil := NewJWTUtil("secret", time.Hour, time.Hour)
	claims := &JWTClaims{UserID: 1, TokenType: TokenTypeAccess}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(tokenString, TokenTypeAccess)
	assert.Error(t, err)
}
