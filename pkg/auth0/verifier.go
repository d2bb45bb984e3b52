package auth0

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/breaker"
	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker"
)

const (
	maxJWKSBytes = 1 << 20
	clockLeeway  = 30 * time.Second
)

var (
	ErrUnknownKey     = errors.New("token signed with an unknown key")
	ErrMissingSubject = errors.New("token carries no subject")
)

// IdentityClaims are the verified claims of a tenant-issued token.
type IdentityClaims struct {
	Subject string
	// Email is empty when the token has none or marks it unverified.
	Email string
}

// TokenVerifier checks a bearer token issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*IdentityClaims, error)
}

// Verifier validates RS256 tokens against the tenant's JWKS. Keys are cached
// and refetched when a token names an unknown kid, at most once per refresh
// interval.
type Verifier struct {
	issuer     string
	audience   string
	emailClaim string
	jwksURL    string
	refresh    time.Duration
	http       *http.Client
	cb         *gobreaker.CircuitBreaker
	logg       *logger.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewVerifier builds a verifier for the configured tenant.
func NewVerifier(cfg config.Auth0Config, logg *logger.Logger) (*Verifier, error) {
	if !cfg.VerifierEnabled() {
		return nil, errors.New("auth0 domain is required")
	}
	emailClaim := strings.TrimSpace(cfg.EmailClaim)
	if emailClaim == "" {
		emailClaim = "email"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Verifier{
		issuer:     cfg.Issuer(),
		audience:   strings.TrimSpace(cfg.APIAudience),
		emailClaim: emailClaim,
		jwksURL:    cfg.JWKSURL(),
		refresh:    cfg.JWKSRefresh,
		http:       &http.Client{Timeout: timeout},
		cb:         breaker.New("auth0-jwks", logg),
		logg:       logg,
		keys:       map[string]*rsa.PublicKey{},
	}, nil
}

// Verify checks the signature, issuer, expiry and (when configured) audience
// of raw and returns its identity claims.
func (v *Verifier) Verify(ctx context.Context, raw string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKey
		}
		return v.key(ctx, kid)
	}, opts...)
	if err != nil {
		return nil, err
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sub) == "" {
		return nil, ErrMissingSubject
	}

	out := &IdentityClaims{Subject: sub}
	if email, ok := claims[v.emailClaim].(string); ok {
		if verified, present := claims["email_verified"].(bool); !present || verified {
			out.Email = strings.ToLower(strings.TrimSpace(email))
		}
	}
	return out, nil
}

func (v *Verifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	stale := time.Since(v.fetchedAt) >= v.refresh
	v.mu.RUnlock()
	if ok {
		return key, nil
	}
	if !stale {
		return nil, ErrUnknownKey
	}

	keys, err := v.fetch(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	if key, ok := keys[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *Verifier) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var set struct {
		Keys []jsonWebKey `json:"keys"`
	}
	err := breaker.Run(v.cb, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := v.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetch jwks: %w", err)
		}
		defer closeBody(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return &APIError{StatusCode: resp.StatusCode}
		}
		return json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&set)
	})
	if err != nil {
		return nil, err
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := rsaKey(k)
		if err != nil {
			if v.logg != nil {
				v.logg.Warn(v.logg.WithField(ctx, "kid", k.Kid), "skipping malformed signing key")
			}
			continue
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func rsaKey(k jsonWebKey) (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	exp := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exp.IsInt64() || exp.Int64() < 3 {
		return nil, errors.New("invalid rsa key")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
