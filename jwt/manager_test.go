package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	m, err := NewManager(Config{
		TTL:           time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("secret-secret-secret-secret"),
		Issuer:        "mock-api",
		Clock:         clock,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := m.Issue("u1", "a@b.c")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "u1" || claims.Email != "a@b.c" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	clock.Advance(2 * time.Hour)
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	pub, _ := newEdKeys(t)
	m, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	claims := Claims{RegisteredClaims: gjwt.RegisteredClaims{Subject: "u", ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute))}}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString([]byte("secret-secret-secret-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestVerifyIssuerAudienceAndKid(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "mock-api",
		Audience:      "client",
		KeyID:         "k1",
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	good, err := m.Issue("u", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(good); err != nil {
		t.Fatalf("expected valid token: %v", err)
	}

	other := Claims{RegisteredClaims: gjwt.RegisteredClaims{
		Subject:   "u",
		Issuer:    "other",
		Audience:  gjwt.ClaimStrings{"client"},
		ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, other)
	tok.Header["kid"] = "k1"
	badIssuer, _ := tok.SignedString(priv)
	if _, err := m.Verify(badIssuer); err == nil {
		t.Fatal("expected wrong issuer to fail")
	}

	other.Issuer = "mock-api"
	tok = gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, other)
	tok.Header["kid"] = "k2"
	badKid, _ := tok.SignedString(priv)
	if _, err := m.Verify(badKid); err == nil {
		t.Fatal("expected unknown kid to fail")
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := []Config{
		{TTL: 0, SigningMethod: MethodHS256, PrivateKey: []byte("k")},
		{TTL: time.Minute, SigningMethod: MethodHS256},
		{TTL: time.Minute, SigningMethod: MethodEd25519},
		{TTL: time.Minute, SigningMethod: "rs256", PrivateKey: []byte("k")},
		{TTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: time.Hour},
	}
	for i, cfg := range cases {
		if _, err := NewManager(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestInspectAndExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("secret-secret-secret-secret"),
		Clock:         clockwork.NewFakeClockAt(now),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Issue("u7", "u7@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if claims.Subject != "u7" {
		t.Fatalf("expected subject u7, got %q", claims.Subject)
	}
	if Expired(token, now.Add(30*time.Second)) {
		t.Fatal("token should be live before exp")
	}
	if !Expired(token, now.Add(time.Minute)) {
		t.Fatal("token should be expired at exp")
	}
	if Expired("opaque-session-token", now.Add(24*time.Hour)) {
		t.Fatal("opaque tokens are never expired")
	}
	if _, err := Inspect("opaque-session-token"); err == nil {
		t.Fatal("expected opaque token to fail inspection")
	}
}
