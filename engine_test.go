package marketauth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockProvider struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*AccountRecord
	byID    map[int64]*AccountRecord

	// lookupErr, when set, is returned by both Get methods in place of a
	// real answer — simulating a backing store outage.
	lookupErr error
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		nextID:  1,
		byEmail: make(map[string]*AccountRecord),
		byID:    make(map[int64]*AccountRecord),
	}
}

func (p *mockProvider) failLookups(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookupErr = err
}

func (p *mockProvider) GetAccountByEmail(_ context.Context, email string) (AccountRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lookupErr != nil {
		return AccountRecord{}, p.lookupErr
	}
	account, ok := p.byEmail[email]
	if !ok {
		return AccountRecord{}, ErrAccountNotFound
	}
	return *account, nil
}

func (p *mockProvider) GetAccountByID(_ context.Context, accountID int64) (AccountRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lookupErr != nil {
		return AccountRecord{}, p.lookupErr
	}
	account, ok := p.byID[accountID]
	if !ok {
		return AccountRecord{}, ErrAccountNotFound
	}
	return *account, nil
}

func (p *mockProvider) CreateAccount(_ context.Context, input CreateAccountInput) (AccountRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	account := &AccountRecord{
		ID:           p.nextID,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         input.Role,
		Active:       true,
	}
	p.nextID++
	p.byEmail[account.Email] = account
	p.byID[account.ID] = account
	return *account, nil
}

func (p *mockProvider) UpdatePasswordHash(_ context.Context, accountID int64, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.byID[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = newHash
	return nil
}

func (p *mockProvider) SetAccountLock(_ context.Context, accountID int64, lockedAt time.Time, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.byID[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.Active = false
	at := lockedAt
	account.LockedAt = &at
	account.LockedReason = reason
	return nil
}

func (p *mockProvider) ClearAccountLock(_ context.Context, accountID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.byID[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.Active = true
	account.LockedAt = nil
	account.LockedReason = ""
	return nil
}

func (p *mockProvider) snapshot(t *testing.T, accountID int64) AccountRecord {
	t.Helper()

	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.byID[accountID]
	if !ok {
		t.Fatalf("no account %d in provider", accountID)
	}
	return *account
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	// Cheap argon2 parameters keep the suite fast; production defaults are
	// exercised separately in the password package.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Maintenance.Interval = 0
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *mockProvider, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	provider := newMockProvider()

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})).
		WithAccountProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, provider, mr
}

func mustSignUp(t *testing.T, engine *Engine, email, pass string, role Role) *LoginResult {
	t.Helper()

	result, err := engine.SignUp(context.Background(), email, pass, role)
	if err != nil {
		t.Fatalf("SignUp(%s) failed: %v", email, err)
	}
	return result
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if _, err := New().WithConfig(testConfig()).WithRedis(client).Build(); err == nil {
		t.Fatal("expected error without account provider")
	}

	builder := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAccountProvider(newMockProvider())
	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	engine.Close()

	if _, err := builder.Build(); err == nil {
		t.Fatal("expected error reusing builder")
	}
}

func TestVerifyAccessTokenRoundtrip(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	result := mustSignUp(t, engine, "vendor@shop.test", "Str0ng!Pass", RoleVendor)

	claims, err := engine.VerifyAccessToken(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if claims.AccountID() != result.Account.ID {
		t.Fatalf("expected account id %d, got %d", result.Account.ID, claims.AccountID())
	}
	if claims.Email != "vendor@shop.test" || claims.Role != string(RoleVendor) {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// A refresh token must not pass access verification.
	if _, err := engine.VerifyAccessToken(ctx, result.RefreshToken); err == nil {
		t.Fatal("expected refresh token to fail access verification")
	}
}
