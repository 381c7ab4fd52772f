package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dpetrov/imgvault/internal/domain"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) Create(ctx context.Context, email, passwordHash string) (*domain.Account, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (email, password_hash) VALUES (?, ?)
	`, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AccountStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.get(ctx, `
		SELECT id, email, password_hash, device_token, created_at FROM accounts WHERE id = ?
	`, id)
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.get(ctx, `
		SELECT id, email, password_hash, device_token, created_at FROM accounts WHERE email = ?
	`, email)
}

func (s *AccountStore) get(ctx context.Context, query string, arg any) (*domain.Account, error) {
	acct := &domain.Account{}
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.DeviceToken, &acct.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acct, nil
}

// BindDeviceToken sets the account's device token only if none is bound yet.
// The conditional update is the serialization point for concurrent first
// logins: exactly one caller observes bound=true, every other caller must
// re-read the row and compare against the winner's token.
func (s *AccountStore) BindDeviceToken(ctx context.Context, id int64, token string) (bound bool, err error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET device_token = ? WHERE id = ? AND device_token IS NULL
	`, token, id)
	if err != nil {
		return false, fmt.Errorf("failed to bind device token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ResetDeviceToken clears the binding so the next login re-binds from scratch.
func (s *AccountStore) ResetDeviceToken(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET device_token = NULL WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to reset device token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
