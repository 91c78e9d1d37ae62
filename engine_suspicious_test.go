package marketauth

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

func TestDetectSuspiciousActivityClassification(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	risk, err := engine.DetectSuspiciousActivity(ctx, signup.Account.ID, "PROFILE_VIEWED", "")
	if err != nil {
		t.Fatalf("DetectSuspiciousActivity failed: %v", err)
	}
	if risk != RiskLow {
		t.Fatalf("expected low risk for unlisted action, got %v", risk)
	}

	risk, err = engine.DetectSuspiciousActivity(ctx, signup.Account.ID, "LOGIN_FAILED", "")
	if err != nil {
		t.Fatalf("DetectSuspiciousActivity failed: %v", err)
	}
	if risk != RiskMedium {
		t.Fatalf("expected medium risk for failed login, got %v", risk)
	}
}

func TestDetectSuspiciousActivityEscalatesAndLocks(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := context.Background()

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	var last RiskLevel
	for i := 0; i < 10; i++ {
		risk, err := engine.DetectSuspiciousActivity(ctx, signup.Account.ID, "LOGIN_FAILED", "burst")
		if err != nil {
			t.Fatalf("DetectSuspiciousActivity %d failed: %v", i, err)
		}
		last = risk
	}

	if last != RiskHigh {
		t.Fatalf("expected high risk at the 10th event, got %v", last)
	}

	account := provider.snapshot(t, signup.Account.ID)
	if account.LockedAt == nil || account.Active {
		t.Fatal("expected force-locked account after escalation")
	}
	if account.LockedReason != lockReasonHighRisk {
		t.Fatalf("unexpected lock reason %q", account.LockedReason)
	}
}

func TestDetectSuspiciousActivityEscalationBackendOutage(t *testing.T) {
	engine, provider, _ := newTestEngine(t)
	ctx := context.Background()

	signup := mustSignUp(t, engine, "shopper@shop.test", "Str0ng!Pass", RoleShopper)

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	provider.failLookups(errors.New("db connection timeout"))

	var last RiskLevel
	for i := 0; i < 10; i++ {
		risk, err := engine.DetectSuspiciousActivity(ctx, signup.Account.ID, "LOGIN_FAILED", "burst")
		if err != nil {
			t.Fatalf("DetectSuspiciousActivity %d failed: %v", i, err)
		}
		last = risk
	}

	// Escalation still classifies, and the skipped force-lock leaves a trace.
	if last != RiskHigh {
		t.Fatalf("expected high risk despite the outage, got %v", last)
	}
	if !strings.Contains(logged.String(), "lock skipped") {
		t.Fatalf("expected the skipped lock to be logged, got %q", logged.String())
	}

	provider.failLookups(nil)
	if account := provider.snapshot(t, signup.Account.ID); account.LockedAt != nil {
		t.Fatal("no lock should persist while the account cannot be loaded")
	}
}

func TestRiskLevelString(t *testing.T) {
	if RiskLow.String() != "low" || RiskMedium.String() != "medium" || RiskHigh.String() != "high" {
		t.Fatal("unexpected risk level strings")
	}
}
