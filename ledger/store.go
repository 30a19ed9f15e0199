/*
store.go - Persistence interface for profiles, contracts, jobs and movements

PURPOSE:
  Defines the boundary between the engine and the database. The engine holds
  a TxStore handed to it at construction; there is no package-level handle.

WRITE CONTRACT:
  - AdjustBalance and MarkJobPaid are the only writes to shared money state.
    They are called by the engine, inside WithTx, and nowhere else.
  - AdjustBalance refuses to leave a balance below zero (ErrInsufficientFunds).
  - MarkJobPaid only flips an unpaid job (ErrJobAlreadyPaid otherwise).
  - Movements are append-only.

ATOMIC UNITS:
  WithTx runs fn against a transactional view. If fn returns an error nothing
  it wrote is visible; otherwise everything commits together. Units are
  serialized against each other, so reads made inside fn are not stale.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite (BEGIN IMMEDIATE + store mutex)
  - ledger/store/memory.go: In-memory for tests and development
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store handles persistence of the marketplace entities.
type Store interface {
	GetProfile(ctx context.Context, id ProfileID) (Profile, error)
	GetContract(ctx context.Context, id ContractID) (Contract, error)
	GetJob(ctx context.Context, id JobID) (Job, error)

	ListContracts(ctx context.Context, filter ContractFilter) ([]Contract, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]Job, error)
	ListMovements(ctx context.Context, profileID ProfileID) ([]Movement, error)

	// Insert* assign an ID when the given one is zero and return the stored row.
	InsertProfile(ctx context.Context, p Profile) (Profile, error)
	InsertContract(ctx context.Context, c Contract) (Contract, error)
	InsertJob(ctx context.Context, j Job) (Job, error)

	// AdjustBalance adds delta to the balance and returns the new balance.
	AdjustBalance(ctx context.Context, id ProfileID, delta decimal.Decimal) (decimal.Decimal, error)

	// MarkJobPaid sets paid and the payment date on an unpaid job.
	MarkJobPaid(ctx context.Context, id JobID, at time.Time) error

	AppendMovement(ctx context.Context, m Movement) error
}

// TxStore wraps Store with atomic units of work.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
