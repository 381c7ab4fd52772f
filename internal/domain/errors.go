package domain

import "errors"

var (
	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the record exists but belongs to another account.
	// We deliberately keep this distinct from ErrNotFound: the original app
	// reveals existence via a separate "not authorized" message, and hiding
	// it buys little between already-authenticated accounts.
	ErrForbidden = errors.New("forbidden")
)
