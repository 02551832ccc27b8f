// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/thereiwas/internal/config"
)

var issuedAt = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return priv
}

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	m := NewTokenManagerWithKey(newTestKey(t), "thereiwas", "thereiwas", time.Hour)
	m.now = func() time.Time { return issuedAt }
	return m
}

func TestIssueClaims(t *testing.T) {
	m := newTestManager(t)
	raw, err := m.Issue("alice", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	m.now = func() time.Time { return issuedAt.Add(2 * time.Second) }
	claims, err := m.Validate(raw)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.Username() != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if !claims.IssuedAt.Time.Equal(issuedAt) {
		t.Errorf("iat = %v", claims.IssuedAt.Time)
	}
	if got := claims.NotBefore.Time.Sub(claims.IssuedAt.Time); got != time.Second {
		t.Errorf("nbf - iat = %v, want 1s", got)
	}
	if got := claims.ExpiresAt.Time.Sub(claims.NotBefore.Time); got != time.Hour {
		t.Errorf("exp - nbf = %v, want 1h", got)
	}
	if claims.Issuer != "thereiwas" || len(claims.Audience) != 1 || claims.Audience[0] != "thereiwas" {
		t.Errorf("iss/aud = %q/%v", claims.Issuer, claims.Audience)
	}
}

func TestValidateTimeWindow(t *testing.T) {
	tests := []struct {
		name    string
		at      time.Duration
		wantErr bool
	}{
		{"before nbf", 0, true},
		{"at nbf", time.Second, false},
		{"mid lifetime", 30 * time.Minute, false},
		{"after exp", time.Hour + 2*time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			raw, err := m.Issue("alice", "viewer")
			if err != nil {
				t.Fatal(err)
			}
			m.now = func() time.Time { return issuedAt.Add(tt.at) }
			_, err = m.Validate(raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidToken) {
				t.Errorf("error should wrap ErrInvalidToken: %v", err)
			}
		})
	}
}

func TestValidateRejectsForeignTokens(t *testing.T) {
	m := newTestManager(t)
	later := func() time.Time { return issuedAt.Add(time.Minute) }

	other := NewTokenManagerWithKey(newTestKey(t), "thereiwas", "thereiwas", time.Hour)
	other.now = func() time.Time { return issuedAt }
	foreignKey, _ := other.Issue("mallory", "admin")

	wrongIss := NewTokenManagerWithKey(m.private, "someone-else", "thereiwas", time.Hour)
	wrongIss.now = func() time.Time { return issuedAt }
	wrongIssuer, _ := wrongIss.Issue("alice", "admin")

	wrongAud := NewTokenManagerWithKey(m.private, "thereiwas", "other-service", time.Hour)
	wrongAud.now = func() time.Time { return issuedAt }
	wrongAudience, _ := wrongAud.Issue("alice", "admin")

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "thereiwas",
		Audience:  jwt.ClaimStrings{"thereiwas"},
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}})
	hmacToken, _ := hs.SignedString([]byte("guessable"))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "thereiwas",
		Audience:  jwt.ClaimStrings{"thereiwas"},
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tokens := map[string]string{
		"foreign key":    foreignKey,
		"wrong issuer":   wrongIssuer,
		"wrong audience": wrongAudience,
		"hmac":           hmacToken,
		"alg none":       noneToken,
		"garbage":        "not.a.jwt",
		"empty":          "",
	}
	m.now = later
	for name, raw := range tokens {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Validate(raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func writeKeyPair(t *testing.T, priv ed25519.PrivateKey, pub ed25519.PublicKey) (string, string) {
	t.Helper()
	dir := t.TempDir()

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatal(err)
	}
	privPath := filepath.Join(dir, "jwt.key")
	pubPath := filepath.Join(dir, "jwt.pub")
	if err := os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), 0o600); err != nil {
		t.Fatal(err)
	}
	return privPath, pubPath
}

func TestNewTokenManagerFromPEM(t *testing.T) {
	priv := newTestKey(t)
	privPath, pubPath := writeKeyPair(t, priv, priv.Public().(ed25519.PublicKey))

	cfg := config.Default().Security
	cfg.JWTPrivateKeyFile = privPath
	cfg.JWTPublicKeyFile = pubPath

	m, err := NewTokenManager(&cfg)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	m.now = func() time.Time { return issuedAt }
	raw, err := m.Issue("bob", "viewer")
	if err != nil {
		t.Fatal(err)
	}
	m.now = func() time.Time { return issuedAt.Add(time.Minute) }
	if _, err := m.Validate(raw); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestNewTokenManagerErrors(t *testing.T) {
	priv := newTestKey(t)
	other := newTestKey(t)
	privPath, _ := writeKeyPair(t, priv, priv.Public().(ed25519.PublicKey))
	_, otherPub := writeKeyPair(t, other, other.Public().(ed25519.PublicKey))

	tests := []struct {
		name    string
		privKey string
		pubKey  string
	}{
		{"missing private file", filepath.Join(t.TempDir(), "nope"), otherPub},
		{"mismatched pair", privPath, otherPub},
		{"public key as private", otherPub, otherPub},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Security
			cfg.JWTPrivateKeyFile = tt.privKey
			cfg.JWTPublicKeyFile = tt.pubKey
			if _, err := NewTokenManager(&cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewTokenManagerEphemeral(t *testing.T) {
	cfg := config.Default().Security
	m, err := NewTokenManager(&cfg)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	if len(m.private) != ed25519.PrivateKeySize {
		t.Error("expected generated key")
	}
}

func TestTokenManager_WithClock(t *testing.T) {
	base := newTestManager(t)
	issuer := base.WithClock(func() time.Time { return issuedAt })
	validator := base.WithClock(func() time.Time { return issuedAt.Add(2 * time.Second) })

	token, err := issuer.Issue("alice", "admin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := validator.Validate(token); err != nil {
		t.Errorf("Validate() with advanced clock error = %v", err)
	}
	if _, err := issuer.Validate(token); err == nil {
		t.Error("token should not be valid at issuance time")
	}
}
