package ledger

import (
	"context"
	"errors"

	"github.com/code-payments/sol-vault/pkg/database/query"
)

var (
	ErrAccountNotFound = errors.New("ledger account not found")

	ErrStaleVersion = errors.New("ledger account version is stale")
)

type Store interface {
	// Get gets the latest committed state of an account. ErrAccountNotFound is
	// returned if the account has never been committed.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner pages through the accounts owned by a program in id order.
	// ErrAccountNotFound is returned if the page is empty.
	GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// Commit atomically persists a set of account states. Each record's Version
	// must match the currently stored version, with zero indicating a new account.
	// ErrStaleVersion is returned, and nothing is persisted, if any record is
	// outdated. On success, each record's Version is advanced.
	Commit(ctx context.Context, records ...*Record) error
}
