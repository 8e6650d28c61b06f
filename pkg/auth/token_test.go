package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-labs/storefront-backend/pkg/config"
	"github.com/storefront-labs/storefront-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "identity.storefront"}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(testJWT, now, AccessTokenPayload{
		UserID: userID,
		Email:  " Ada@Example.com ",
		Role:   enums.RoleAdmin,
		TTL:    30 * time.Minute,
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWT, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, testJWT.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleCustomer})
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWT, token+"x")
	assert.Error(t, err)

	_, err = ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: testJWT.Issuer}, token)
	assert.Error(t, err)

	_, err = ParseAccessToken(config.JWTConfig{Secret: testJWT.Secret, Issuer: "someone-else"}, token)
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := MintAccessToken(testJWT, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleCustomer,
	})
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWT, token)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expired"), "got %v", err)
}

func TestParseAccessTokenRequiresKnownRole(t *testing.T) {
	claims := AccessTokenClaims{
		UserID: uuid.New(),
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testJWT.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWT.Secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWT, token)
	assert.Error(t, err)
}

func TestMintAccessTokenValidatesPayload(t *testing.T) {
	_, err := MintAccessToken(testJWT, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	assert.Error(t, err)

	_, err = MintAccessToken(testJWT, time.Now(), AccessTokenPayload{Role: enums.RoleCustomer})
	assert.Error(t, err)

	_, err = MintAccessToken(config.JWTConfig{Issuer: "x"}, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.RoleCustomer})
	assert.Error(t, err)
}
