// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/thereiwas/internal/config"
	"github.com/tomtom215/thereiwas/internal/logging"
)

// notBeforeDelay is added to iat to form nbf.
const notBeforeDelay = time.Second

// Claims are the JWT claims issued at login.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject.
func (c *Claims) Username() string { return c.Subject }

// TokenManager issues and validates EdDSA access tokens.
type TokenManager struct {
	private  ed25519.PrivateKey
	public   ed25519.PublicKey
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenManager loads the key pair named in cfg. Without key files an
// ephemeral pair is generated and tokens do not survive a restart.
func NewTokenManager(cfg *config.SecurityConfig) (*TokenManager, error) {
	m := &TokenManager{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.TokenLifetime,
		now:      time.Now,
	}
	if m.lifetime <= 0 {
		m.lifetime = time.Hour
	}

	if cfg.JWTPrivateKeyFile == "" {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		m.private, m.public = priv, pub
		logging.Warn().Msg("No JWT key files configured, using an ephemeral signing key")
		return m, nil
	}

	priv, err := loadPrivateKey(cfg.JWTPrivateKeyFile)
	if err != nil {
		return nil, err
	}
	pub, err := loadPublicKey(cfg.JWTPublicKeyFile)
	if err != nil {
		return nil, err
	}
	if !priv.Public().(ed25519.PublicKey).Equal(pub) {
		return nil, errors.New("JWT public key does not match private key")
	}
	m.private, m.public = priv, pub
	return m, nil
}

// NewTokenManagerWithKey builds a manager around an existing key.
func NewTokenManagerWithKey(priv ed25519.PrivateKey, issuer, audience string, lifetime time.Duration) *TokenManager {
	return &TokenManager{
		private:  priv,
		public:   priv.Public().(ed25519.PublicKey),
		issuer:   issuer,
		audience: audience,
		lifetime: lifetime,
		now:      time.Now,
	}
}

// WithClock returns a copy of m that reads the time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

func loadPrivateKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT private key %s: %w", path, err)
	}
	key, err := jwt.ParseEdPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT private key %s: %w", path, err)
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("JWT private key %s is not Ed25519", path)
	}
	return priv, nil
}

func loadPublicKey(path string) (ed25519.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JWT public key %s: %w", path, err)
	}
	key, err := jwt.ParseEdPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT public key %s: %w", path, err)
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("JWT public key %s is not Ed25519", path)
	}
	return pub, nil
}

// Issue signs a token for username with role. The token becomes valid one
// second after issuance.
func (m *TokenManager) Issue(username, role string) (string, error) {
	iat := m.now().UTC().Truncate(time.Second)
	nbf := iat.Add(notBeforeDelay)

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			NotBefore: jwt.NewNumericDate(nbf),
			ExpiresAt: jwt.NewNumericDate(nbf.Add(m.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(m.private)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer, audience and the time
// claims. Every failure wraps ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.public, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrInvalidToken)
	}
	return claims, nil
}
