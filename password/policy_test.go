package password

import (
	"strings"
	"testing"
)

func TestValidateAcceptsStrongPassword(t *testing.T) {
	res := Validate("Abcdef1!")
	if !res.Valid {
		t.Fatalf("expected valid, got violations: %v", res.Errors)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("expected no violations, got %v", res.Errors)
	}
}

func TestValidateRejectsCommonPassword(t *testing.T) {
	res := Validate("password")
	if res.Valid {
		t.Fatal("expected invalid")
	}

	var denylisted bool
	for _, v := range res.Errors {
		if strings.Contains(v, "too common") {
			denylisted = true
		}
	}
	if !denylisted {
		t.Fatalf("expected a denylist violation, got %v", res.Errors)
	}
}

func TestValidateDenylistIsCaseInsensitive(t *testing.T) {
	res := Validate("PaSsWoRd")
	var denylisted bool
	for _, v := range res.Errors {
		if strings.Contains(v, "too common") {
			denylisted = true
		}
	}
	if !denylisted {
		t.Fatalf("expected a denylist violation, got %v", res.Errors)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	// Too short, no upper, no digit, no symbol: four independent violations.
	res := Validate("abc")
	if res.Valid {
		t.Fatal("expected invalid")
	}
	if len(res.Errors) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(res.Errors), res.Errors)
	}
}

func TestValidateLengthBounds(t *testing.T) {
	long := strings.Repeat("Aa1!", 33) // 132 chars
	res := Validate(long)
	if res.Valid {
		t.Fatal("expected invalid for over-length password")
	}

	res = Validate("Aa1!Aa1!")
	if !res.Valid {
		t.Fatalf("expected 8-char password to pass, got %v", res.Errors)
	}
}
