package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/simha10/SAMS-sub000/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrUntrusted is returned for every credential the verifier rejects.
// Callers must not leak the underlying reason to the client.
var ErrUntrusted = errors.New("trigger credential not trusted")

// Principal identifies the caller that authenticated a job trigger.
type Principal struct {
	Subject string
	Source  string
}

// Verifier authenticates a raw trigger credential and returns the
// principal behind it.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Principal, error)
}

// NewVerifier selects the implementation by which trigger source the
// config carries: the shared-secret hash when set, OIDC otherwise.
// Config validation already refuses the secret in production, so the
// production path always lands on OIDC.
func NewVerifier(ctx context.Context, cfg config.TriggerConfig) (Verifier, error) {
	if cfg.SecretHash != "" {
		return NewSecretVerifier(cfg.SecretHash), nil
	}
	return NewOIDCVerifier(ctx, cfg.JWKSURL, cfg.OIDCIssuer, cfg.OIDCAudience, cfg.VerifyTimeout)
}

// SecretVerifier compares the presented secret against a bcrypt hash.
// It is the non-production path only; configuration refuses to load it
// in production.
type SecretVerifier struct {
	hash []byte
}

func NewSecretVerifier(hash string) *SecretVerifier {
	return &SecretVerifier{hash: []byte(hash)}
}

func (v *SecretVerifier) Verify(_ context.Context, credential string) (Principal, error) {
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(credential)); err != nil {
		return Principal{}, ErrUntrusted
	}
	return Principal{Subject: "scheduler", Source: "shared-secret"}, nil
}

// OIDCVerifier validates a bearer token against the issuer's JWKS. Keys
// are fetched through a refreshing cache so the hot path stays local.
type OIDCVerifier struct {
	cache    *jwk.Cache
	jwksURL  string
	issuer   string
	audience string
	timeout  time.Duration
}

func NewOIDCVerifier(ctx context.Context, jwksURL, issuer, audience string, timeout time.Duration) (*OIDCVerifier, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
	}
	return &OIDCVerifier{
		cache:    cache,
		jwksURL:  jwksURL,
		issuer:   issuer,
		audience: audience,
		timeout:  timeout,
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, credential string) (Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	keySet, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	tok, err := jwt.Parse(
		[]byte(credential),
		jwt.WithKeySet(keySet),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithValidate(true),
	)
	if err != nil {
		return Principal{}, ErrUntrusted
	}

	return Principal{Subject: tok.Subject(), Source: "oidc"}, nil
}
