package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dpetrov/imgvault/internal/db"
	"github.com/dpetrov/imgvault/internal/domain"
	"github.com/dpetrov/imgvault/internal/logging"
	"github.com/dpetrov/imgvault/internal/store"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *store.AccountStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	logger, cleanup, err := logging.New("error", "")
	require.NoError(t, err)
	t.Cleanup(cleanup)

	accounts := store.NewAccountStore(d)
	return NewAuthenticator(accounts, logger), accounts
}

// seedAccount creates an account with a real (cheap) bcrypt hash.
func seedAccount(t *testing.T, accounts *store.AccountStore, email, password string) *domain.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	acct, err := accounts.Create(context.Background(), email, string(hash))
	require.NoError(t, err)
	return acct
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	_, _, err := a.Authenticate(context.Background(), "nobody@x.com", "pw", "")
	assert.ErrorIs(t, err, ErrUnknownEmail)
}

func TestAuthenticateBadPassword(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	seedAccount(t, accounts, "a@x.com", "pw1")

	_, _, err := a.Authenticate(context.Background(), "a@x.com", "wrong", "")
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestAuthenticateFirstLoginBindsToken(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	seeded := seedAccount(t, accounts, "a@x.com", "pw1")
	ctx := context.Background()

	acct, token, err := a.Authenticate(ctx, "a@x.com", "pw1", "")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, acct.ID)
	assert.NotEmpty(t, token)

	stored, err := accounts.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeviceToken)
	assert.Equal(t, token, *stored.DeviceToken)
}

func TestAuthenticateBoundAccountTokenMatrix(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	seedAccount(t, accounts, "a@x.com", "pw1")
	ctx := context.Background()

	_, token, err := a.Authenticate(ctx, "a@x.com", "pw1", "")
	require.NoError(t, err)

	// Exact match succeeds and performs no further writes.
	acct, returned, err := a.Authenticate(ctx, "a@x.com", "pw1", token)
	require.NoError(t, err)
	assert.Equal(t, token, returned)
	require.NotNil(t, acct.DeviceToken)
	assert.Equal(t, token, *acct.DeviceToken)

	// Any other value is a device mismatch, never a password error.
	for _, presented := range []string{"", "garbage", token + "x"} {
		_, _, err := a.Authenticate(ctx, "a@x.com", "pw1", presented)
		assert.ErrorIs(t, err, ErrDeviceMismatch, "presented=%q", presented)
	}
}

func TestAuthenticateBindResetRebind(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	seeded := seedAccount(t, accounts, "a@x.com", "pw1")
	ctx := context.Background()

	_, first, err := a.Authenticate(ctx, "a@x.com", "pw1", "")
	require.NoError(t, err)

	require.NoError(t, a.ResetBinding(ctx, seeded.ID))

	// A "new device" (no cookie) can now log in and gets a fresh token.
	_, second, err := a.Authenticate(ctx, "a@x.com", "pw1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	// The old device is locked out.
	_, _, err = a.Authenticate(ctx, "a@x.com", "pw1", first)
	assert.ErrorIs(t, err, ErrDeviceMismatch)
}

func TestResetBindingNotFound(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	err := a.ResetBinding(context.Background(), 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestAuthenticateConcurrentFirstLogins races several first logins for one
// account. Exactly one token may end up persisted; every loser must be
// rejected as a device mismatch, never silently rebound.
func TestAuthenticateConcurrentFirstLogins(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	seeded := seedAccount(t, accounts, "a@x.com", "pw1")
	ctx := context.Background()

	const attempts = 8
	type result struct {
		token string
		err   error
	}
	results := make([]result, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, token, err := a.Authenticate(ctx, "a@x.com", "pw1", "")
			results[i] = result{token: token, err: err}
		}(i)
	}
	wg.Wait()

	stored, err := accounts.GetByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeviceToken)

	winners := 0
	for _, r := range results {
		switch {
		case r.err == nil:
			winners++
			assert.Equal(t, *stored.DeviceToken, r.token)
		default:
			assert.ErrorIs(t, r.err, ErrDeviceMismatch)
		}
	}
	assert.Equal(t, 1, winners, "exactly one first login may bind")
}

func TestBootstrapIdempotent(t *testing.T) {
	a, accounts := newTestAuthenticator(t)
	ctx := context.Background()

	seeds := []Seed{
		{Email: "user1@example.com", Password: "pass1"},
		{Email: "user2@example.com", Password: "pass2"},
	}

	created, err := a.Bootstrap(ctx, seeds)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Second run skips everything.
	created, err = a.Bootstrap(ctx, seeds)
	require.NoError(t, err)
	assert.Zero(t, created)

	// Seeded credentials actually work.
	_, _, err = a.Authenticate(ctx, "user1@example.com", "pass1", "")
	assert.NoError(t, err)

	acct, err := accounts.GetByEmail(ctx, "user2@example.com")
	require.NoError(t, err)
	require.NotNil(t, acct)
	assert.NotEqual(t, "pass2", acct.PasswordHash)
}
