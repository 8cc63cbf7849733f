package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veilapp/veil-backend/internal/auth"
	"github.com/veilapp/veil-backend/internal/config"
)

func issuer(secret string) *auth.TokenIssuer {
	cfg := config.New()
	cfg.JWT.Secret = secret
	cfg.JWT.TTLDays = 7
	return auth.NewTokenIssuer(cfg)
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	iss := issuer("test-secret")

	token, err := iss.Issue("u1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	iss := issuer("test-secret")

	_, err := iss.Verify("not.a.token")
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := issuer("secret-a").Issue("u1")
	require.NoError(t, err)

	_, err = issuer("secret-b").Verify(token)
	assert.Error(t, err)
}
