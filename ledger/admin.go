/*
admin.go - Creating profiles, contracts and jobs

PURPOSE:
  Validated inserts used by scenario seeding. Opening balances and prices
  are rounded to MoneyPlaces.
*/
package ledger

import (
	"context"
	"errors"
)

// =============================================================================
// ADMINISTRATIVE WRITES
// =============================================================================
// Used by seeding and a future admin surface. None of these move money
// between existing parties.

// CreateProfile stores a new profile. The opening balance must be non-negative.
func (e *Engine) CreateProfile(ctx context.Context, p Profile) (Profile, error) {
	if !p.Role.Valid() {
		return Profile{}, badRequest("role must be client or contractor")
	}
	if p.Balance.IsNegative() {
		return Profile{}, badRequest("balance must not be negative")
	}
	p.Balance = roundMoney(p.Balance)

	saved, err := e.store.InsertProfile(ctx, p)
	if err != nil {
		return Profile{}, failed(KindInternal, "failed to create profile", err)
	}
	return saved, nil
}

// CreateContract stores a new contract after checking that ClientID refers to
// a client and ContractorID to a contractor.
func (e *Engine) CreateContract(ctx context.Context, c Contract) (Contract, error) {
	if !c.Status.Valid() {
		return Contract{}, badRequest("status must be new, in_progress or terminated")
	}

	var saved Contract
	err := e.store.WithTx(ctx, func(s Store) error {
		if err := requireRole(ctx, s, c.ClientID, RoleClient, "client_id must reference a client profile"); err != nil {
			return err
		}
		if err := requireRole(ctx, s, c.ContractorID, RoleContractor, "contractor_id must reference a contractor profile"); err != nil {
			return err
		}
		var err error
		saved, err = s.InsertContract(ctx, c)
		return err
	})
	if err != nil {
		return Contract{}, asError(err, "failed to create contract")
	}
	return saved, nil
}

// CreateJob stores a new job under an existing contract. A job created paid
// (historical data) must carry its payment date.
func (e *Engine) CreateJob(ctx context.Context, j Job) (Job, error) {
	if !j.Price.IsPositive() {
		return Job{}, badRequest("price must be positive")
	}
	if j.Paid != (j.PaymentDate != nil) {
		return Job{}, badRequest("payment date must be set exactly when the job is paid")
	}
	j.Price = roundMoney(j.Price)

	var saved Job
	err := e.store.WithTx(ctx, func(s Store) error {
		if _, err := s.GetContract(ctx, j.ContractID); err != nil {
			if errors.Is(err, ErrContractNotFound) {
				return badRequest("contract not found")
			}
			return err
		}
		var err error
		saved, err = s.InsertJob(ctx, j)
		return err
	})
	if err != nil {
		return Job{}, asError(err, "failed to create job")
	}
	return saved, nil
}

func requireRole(ctx context.Context, s Store, id ProfileID, role Role, message string) error {
	p, err := s.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return badRequest(message)
		}
		return err
	}
	if p.Role != role {
		return badRequest(message)
	}
	return nil
}

// asError passes *Error through and wraps anything else as internal.
func asError(err error, message string) *Error {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr
	}
	return failed(KindInternal, message, err)
}
