package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/dpetrov/imgvault/internal/domain"
)

// Authentication failures are sentinel values so callers can pick the
// user-facing message without string matching.
var (
	ErrUnknownEmail   = errors.New("unknown email")
	ErrBadPassword    = errors.New("bad password")
	ErrDeviceMismatch = errors.New("device mismatch")
)

// accountRepository is the subset of store.AccountStore the authenticator needs.
type accountRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	BindDeviceToken(ctx context.Context, id int64, token string) (bool, error)
	ResetDeviceToken(ctx context.Context, id int64) error
}

// Authenticator checks credentials and enforces the one-device-per-account
// policy: the first successful login binds the account to a fresh token, and
// every later login must present that exact token.
type Authenticator struct {
	accounts accountRepository
	logger   *slog.Logger
}

func NewAuthenticator(accounts accountRepository, logger *slog.Logger) *Authenticator {
	return &Authenticator{accounts: accounts, logger: logger}
}

// Authenticate verifies email/password and the presented device token. On
// success it returns the account and the token the caller must set as the
// device cookie. The only path that writes state is the first-login bind.
func (a *Authenticator) Authenticate(ctx context.Context, email, password, presentedToken string) (*domain.Account, string, error) {
	acct, err := a.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}
	if acct == nil {
		return nil, "", ErrUnknownEmail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrBadPassword
	}

	if acct.DeviceToken != nil {
		return matchBoundToken(acct, presentedToken)
	}

	token, err := NewDeviceToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate device token: %w", err)
	}

	bound, err := a.accounts.BindDeviceToken(ctx, acct.ID, token)
	if err != nil {
		return nil, "", fmt.Errorf("failed to bind device token: %w", err)
	}
	if !bound {
		// Lost a concurrent first-login race. Re-read the row and evaluate
		// against the winner's token; this caller must not overwrite it.
		acct, err = a.accounts.GetByID(ctx, acct.ID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to re-read account after bind race: %w", err)
		}
		if acct == nil || acct.DeviceToken == nil {
			return nil, "", ErrDeviceMismatch
		}
		return matchBoundToken(acct, presentedToken)
	}

	a.logger.Info("device bound", "account_id", acct.ID)
	return acct, token, nil
}

// matchBoundToken is the only transition out of the Bound state: an exact
// token match. Anything else, including no token at all, is a dead end.
func matchBoundToken(acct *domain.Account, presented string) (*domain.Account, string, error) {
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(*acct.DeviceToken)) != 1 {
		return nil, "", ErrDeviceMismatch
	}
	return acct, presented, nil
}

// ResetBinding clears the account's device token so the next login re-binds.
// No authorization check here: anyone who knows an account id can clear its
// binding. TODO: restrict the reset surface to an admin session.
func (a *Authenticator) ResetBinding(ctx context.Context, accountID int64) error {
	if err := a.accounts.ResetDeviceToken(ctx, accountID); err != nil {
		return err
	}
	a.logger.Info("device binding reset", "account_id", accountID)
	return nil
}

// Seed is one bootstrap account.
type Seed struct {
	Email    string
	Password string
}

// Bootstrap creates the seed accounts with bcrypt hashes, skipping emails
// that already exist. Returns how many accounts were created.
func (a *Authenticator) Bootstrap(ctx context.Context, seeds []Seed) (int, error) {
	created := 0
	for _, seed := range seeds {
		existing, err := a.accounts.GetByEmail(ctx, seed.Email)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("failed to hash password: %w", err)
		}
		if _, err := a.accounts.Create(ctx, seed.Email, string(hash)); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
