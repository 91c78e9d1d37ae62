package marketauth

import (
	"context"
	"errors"
	"testing"
)

func TestLoginSuccess(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	result, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Account.ID != signup.Account.ID {
		t.Fatalf("expected account %d, got %d", signup.Account.ID, result.Account.ID)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	mustSignUp(t, engine, "  Shopper@Shop.Test ", "Str0ng!Pass", RoleShopper)

	result, err := engine.Login(ctx, "SHOPPER@shop.test", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Account.Email != "shopper@shop.test" {
		t.Fatalf("expected normalized email, got %q", result.Account.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	if _, err := engine.Login(ctx, "shopper@shop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	if _, err := engine.Login(ctx, "ghost@shop.test", "Str0ng!Pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestLoginLockoutOnFifthFailure(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	for i := 1; i <= 4; i++ {
		if _, err := engine.Login(ctx, "shopper@shop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
		if account := provider.snapshot(t, signup.Account.ID); account.LockedAt != nil {
			t.Fatalf("account locked after %d failures, threshold is 5", i)
		}
	}

	if _, err := engine.Login(ctx, "shopper@shop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("attempt 5: expected ErrInvalidCredentials, got %v", err)
	}

	account := provider.snapshot(t, signup.Account.ID)
	if account.LockedAt == nil || account.Active {
		t.Fatal("expected account locked after 5th failure")
	}
	if account.LockedReason != lockReasonFailedLogins {
		t.Fatalf("unexpected lock reason %q", account.LockedReason)
	}

	// Even the correct password is refused while locked.
	if _, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	for i := 0; i < 3; i++ {
		if _, err := engine.Login(ctx, "shopper@shop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}

	if _, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	count, err := engine.FailureCount(ctx, "shopper@shop.test", "10.0.0.1")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected counter reset to 0 after success, got %d", count)
	}

	// The next failure is attempt 1, not attempt 4.
	if _, err := engine.Login(ctx, "shopper@shop.test", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	count, err = engine.FailureCount(ctx, "shopper@shop.test", "10.0.0.1")
	if err != nil || count != 1 {
		t.Fatalf("expected counter 1 after fresh failure, got count=%d err=%v", count, err)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := context.Background()

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	provider.mu.Lock()
	provider.byID[signup.Account.ID].Active = false
	provider.mu.Unlock()

	if _, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass"); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestUnlockRestoresLoginAndIsIdempotent(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	for i := 0; i < 5; i++ {
		_, _ = engine.Login(ctx, "shopper@shop.test", "wrong-password")
	}
	if account := provider.snapshot(t, signup.Account.ID); account.LockedAt == nil {
		t.Fatal("expected locked account")
	}

	if err := engine.Unlock(ctx, "shopper@shop.test"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	account := provider.snapshot(t, signup.Account.ID)
	if !account.Active || account.LockedAt != nil || account.LockedReason != "" {
		t.Fatalf("expected open account after unlock, got %+v", account)
	}

	// Unlocking an open account is a no-op, not an error.
	if err := engine.Unlock(ctx, "shopper@shop.test"); err != nil {
		t.Fatalf("idempotent Unlock failed: %v", err)
	}

	if _, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass"); err != nil {
		t.Fatalf("Login after unlock failed: %v", err)
	}
}

func TestLoginBackendOutageDoesNotCountFailure(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := WithOrigin(context.Background(), "10.0.0.1")

	mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	outage := errors.New("db connection timeout")
	provider.failLookups(outage)

	_, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass")
	if !errors.Is(err, outage) {
		t.Fatalf("expected the backend error surfaced, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("a backend outage must not read as wrong credentials")
	}

	// The outage did not feed the lockout counter.
	provider.failLookups(nil)
	count, err := engine.FailureCount(ctx, "shopper@shop.test", "10.0.0.1")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("outage counted as a login failure, count=%d", count)
	}

	if _, err := engine.Login(ctx, "shopper@shop.test", "Str0ng!Pass"); err != nil {
		t.Fatalf("Login after recovery failed: %v", err)
	}
}

func TestUnlockBackendOutageSurfaced(t *testing.T) {
	engine, provider, _ := newTestEngine(t)

	outage := errors.New("db connection timeout")
	provider.failLookups(outage)

	err := engine.Unlock(context.Background(), "shopper@shop.test")
	if !errors.Is(err, outage) {
		t.Fatalf("expected the backend error surfaced, got %v", err)
	}
	if errors.Is(err, ErrAccountNotFound) {
		t.Fatal("a backend outage must not read as a missing account")
	}
}

func TestUnlockUnknownEmail(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if err := engine.Unlock(context.Background(), "ghost@shop.test"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
