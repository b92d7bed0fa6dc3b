package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workorder-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", 30)
	user := &domain.User{
		ID:          "user-1",
		Username:    "tech",
		DisplayName: "Alex Chen",
		Role:        domain.RoleTechnician,
	}

	token, exp, err := manager.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := manager.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.RegisteredClaims.Subject)
	assert.Equal(t, "tech", claims.Username)
	assert.Equal(t, domain.RoleTechnician, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 30)
	verifier := NewTokenManager("secret-b", 30)

	token, _, err := issuer.GenerateToken(&domain.User{ID: "user-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	require.Error(t, err)
}

func TestPasswordHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, ComparePassword(hash, "s3cret-pass"))
	require.Error(t, ComparePassword(hash, "wrong"))
}
