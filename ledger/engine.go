/*
engine.go - The Engine that runs payments, deposits and policy-filtered reads

PURPOSE:
  Engine is the single entry point for changing money state. It validates
  the caller's preconditions, then applies the change inside one WithTx unit
  so that either everything is persisted or nothing is.

OPERATIONS:
  pay.go:     PayForJob
  deposit.go: DepositToBalance, TotalOwed
  admin.go:   CreateProfile, CreateContract, CreateJob
  query.go:   GetContract, ListContracts, ListUnpaidJobs, ListMovements

IDENTITY:
  Operations receive the requester Profile already resolved. The engine
  never looks the requester up by a caller-supplied identifier.

USAGE:
  engine := ledger.NewEngine(store, ledger.WithLogger(log))
  job, err := engine.PayForJob(ctx, requester, 42)
  switch ledger.KindOf(err) { ... }
*/
package ledger

import (
	"time"

	"github.com/rs/zerolog"
)

type Engine struct {
	store TxStore
	log   zerolog.Logger
	now   func() time.Time
}

type Option func(*Engine)

func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock replaces the clock used for payment dates and movement times.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store TxStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) clock() time.Time {
	return e.now().UTC()
}
