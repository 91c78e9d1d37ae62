package marketauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quayside/marketauth/password"
)

// SignUp creates an account and auto-issues a token pair, persisting the
// refresh hash so the new account is immediately logged in. The raw
// password is policy-checked and hashed before it reaches the provider.
//
// SignUp may return an error when input validation, dependency calls, or security checks fail.
// SignUp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SignUp(ctx context.Context, email, pass string, role Role) (*LoginResult, error) {
	if e == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrAccountRoleInvalid, role)
	}

	if result := password.Validate(pass); !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrPasswordPolicy, strings.Join(result.Errors, "; "))
	}

	if _, err := e.accounts.GetAccountByEmail(ctx, email); err == nil {
		e.metricInc(MetricSignupDuplicate)
		return nil, ErrAccountExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		// A failed duplicate lookup is not evidence of a free email.
		return nil, err
	}

	hash, err := e.passwordHash.Hash(pass)
	if err != nil {
		return nil, err
	}
	pass = ""

	account, err := e.accounts.CreateAccount(ctx, CreateAccountInput{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, AuditAccountCreated, true, account.ID, nil, func() map[string]string {
		return map[string]string{
			"email": email,
			"role":  string(role),
		}
	})

	return e.establishSession(ctx, account, AuditLoginFailed)
}
