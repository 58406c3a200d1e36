package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, []string{"ADMIN"})
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, []string{"ADMIN"}, claims.Roles)

	sig, err := ExtractSignature(token)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)
}

func TestSecretRotationInvalidatesTokens(t *testing.T) {
	token, err := GenerateToken(1, nil)
	require.NoError(t, err)

	SetSecret("rotated")
	t.Cleanup(func() { SetSecret(defaultJWTSecret) })

	_, err = ValidateToken(token)
	assert.Error(t, err)

	SetSecret("")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsForeignIssuer(t *testing.T) {
	claims := &UserClaims{
		UserID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestExtractSignatureMalformed(t *testing.T) {
	_, err := ExtractSignature("a.b")
	assert.Error(t, err)
}
