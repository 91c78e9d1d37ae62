package password

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minLength = 8
	maxLength = 128

	symbolSet = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// commonPasswords is a small denylist of passwords that are rejected
// regardless of character composition. Matching is case-insensitive.
var commonPasswords = []string{
	"password",
	"password1",
	"12345678",
	"123456789",
	"qwerty123",
	"letmein",
	"welcome1",
	"iloveyou",
	"admin123",
	"abc12345",
}

// Result is the outcome of a policy check. Valid is true iff Errors is empty.
type Result struct {
	Valid  bool
	Errors []string
}

// Validate checks a candidate password against the policy rule set. Every
// rule is evaluated independently and all violations are collected; the
// check never short-circuits. Pure function, no I/O.
func Validate(candidate string) Result {
	var violations []string

	if len(candidate) < minLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", minLength))
	}
	if len(candidate) > maxLength {
		violations = append(violations, fmt.Sprintf("must be at most %d characters", maxLength))
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range candidate {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(symbolSet, r):
			hasSymbol = true
		}
	}

	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSymbol {
		violations = append(violations, "must contain a symbol")
	}

	lowered := strings.ToLower(candidate)
	for _, common := range commonPasswords {
		if lowered == common {
			violations = append(violations, "is too common")
			break
		}
	}

	return Result{Valid: len(violations) == 0, Errors: violations}
}
