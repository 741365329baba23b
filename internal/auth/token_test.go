package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
)

func newTokens(t *testing.T) *Tokens {
	t.Helper()
	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = time.Hour
	return NewTokens(cfg)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := newTokens(t)
	user := &models.User{ID: uuid.New(), Role: string(authz.RoleEmployee)}

	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	who, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, who.UserID)
	assert.Equal(t, authz.RoleEmployee, who.Role)
}

func TestTokens_Expired(t *testing.T) {
	tokens := newTokens(t)
	raw, err := tokens.Issue(&models.User{ID: uuid.New(), Role: "CLIENT"})
	require.NoError(t, err)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = tokens.Parse(raw)
	assert.True(t, httperr.IsCode(err, "invalid_token"))
}

func TestTokens_Rejects(t *testing.T) {
	tokens := newTokens(t)

	other := newTokens(t)
	other.secret = []byte("another-secret")
	foreign, err := other.Issue(&models.User{ID: uuid.New(), Role: "CLIENT"})
	require.NoError(t, err)

	badRole, err := tokens.Issue(&models.User{ID: uuid.New(), Role: "ROOT"})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "ADMIN",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"unknown role": badRole,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Parse(raw)
			assert.Equal(t, httperr.KindAuthentication, httperr.KindOf(err))
		})
	}
}
