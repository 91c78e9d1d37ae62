package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	codec, err := NewCodec(testConfig())
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	access, err := codec.IssueAccess(42, "vendor@example.com", "vendor")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	claims, err := codec.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.AccountID() != 42 {
		t.Fatalf("expected account id 42, got %d", claims.AccountID())
	}
	if claims.Email != "vendor@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
	if claims.Role != "vendor" {
		t.Fatalf("unexpected role claim: %s", claims.Role)
	}
}

func TestRefreshTokenRejectedByAccessVerifier(t *testing.T) {
	codec, err := NewCodec(testConfig())
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	refresh, err := codec.IssueRefresh(7, "shopper@example.com", "shopper")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	// Distinct secrets: a refresh token must never verify as an access token.
	if _, err := codec.ParseAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	access, err := codec.IssueAccess(7, "shopper@example.com", "shopper")
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}
	if _, err := codec.ParseRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestExpiredTokenDistinctFromInvalid(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshTTL = -time.Minute
	codec, err := NewCodec(cfg)
	if err == nil {
		t.Fatal("expected NewCodec to reject non-positive TTL")
	}

	cfg = testConfig()
	cfg.RefreshTTL = time.Millisecond
	codec, err = NewCodec(cfg)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	refresh, err := codec.IssueRefresh(9, "a@example.com", "shopper")
	if err != nil {
		t.Fatalf("IssueRefresh failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := codec.ParseRefresh(refresh); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	if _, err := codec.ParseRefresh("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for garbage input, got %v", err)
	}
}

func TestNewCodecRejectsSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	if _, err := NewCodec(cfg); err == nil {
		t.Fatal("expected NewCodec to reject identical secrets")
	}
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-refresh-token")
	h2 := HashToken("some-refresh-token")
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if h1 == HashToken("another-token") {
		t.Fatal("distinct inputs must not collide")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
	if strings.Contains(h1, "some-refresh-token") {
		t.Fatal("digest must not contain the raw token")
	}
}
