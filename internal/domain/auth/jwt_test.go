package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/apperror"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "clerk@example.com", []string{"clerk"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "clerk@example.com", user.Email)
	assert.Equal(t, []string{"clerk"}, user.Roles)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	other := NewJWTService(DefaultJWTConfig("other-secret"))

	token, _, err := other.GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	expiredCfg := DefaultJWTConfig("secret")
	expiredCfg.AccessTokenTTL = -2 * time.Minute
	expired, _, err := NewJWTService(expiredCfg).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(expired)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "token expired", appErr.Message)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tradebook",
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: "tradebook", Subject: "u-1",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(noExpiry)
	assert.Error(t, err)
}

func TestValidateTokenFallsBackToSubject(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "tradebook",
		Subject:   "svc-reporting",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "svc-reporting", user.UserID)
}
