package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/simha10/SAMS-sub000/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSecretVerifier(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret-trigger"), bcrypt.DefaultCost)
	require.NoError(t, err)
	v := NewSecretVerifier(string(hash))

	t.Run("accepts the matching secret", func(t *testing.T) {
		p, err := v.Verify(context.Background(), "super-secret-trigger")
		require.NoError(t, err)
		assert.Equal(t, "scheduler", p.Subject)
		assert.Equal(t, "shared-secret", p.Source)
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "guessed-secret")
		assert.ErrorIs(t, err, ErrUntrusted)
	})

	t.Run("rejects an empty credential", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrUntrusted)
	})

	t.Run("rejects when the stored hash is garbage", func(t *testing.T) {
		broken := NewSecretVerifier("not-a-bcrypt-hash")
		_, err := broken.Verify(context.Background(), "super-secret-trigger")
		assert.ErrorIs(t, err, ErrUntrusted)
	})
}

func TestNewVerifier(t *testing.T) {
	t.Run("secret hash selects the secret verifier", func(t *testing.T) {
		v, err := NewVerifier(context.Background(), config.TriggerConfig{
			SecretHash: "$2a$10$example",
		})
		require.NoError(t, err)
		assert.IsType(t, &SecretVerifier{}, v)
	})

	t.Run("OIDC-only config selects the OIDC verifier", func(t *testing.T) {
		v, err := NewVerifier(context.Background(), config.TriggerConfig{
			OIDCIssuer:    "https://issuer.example.com",
			OIDCAudience:  "sams",
			JWKSURL:       "https://issuer.example.com/jwks",
			VerifyTimeout: 5 * time.Second,
		})
		require.NoError(t, err)
		assert.IsType(t, &OIDCVerifier{}, v)
	})

	t.Run("secret wins when both sources are configured", func(t *testing.T) {
		v, err := NewVerifier(context.Background(), config.TriggerConfig{
			SecretHash: "$2a$10$example",
			OIDCIssuer: "https://issuer.example.com",
		})
		require.NoError(t, err)
		assert.IsType(t, &SecretVerifier{}, v)
	})
}
