/*
deposit.go - Client deposits and the amount owed that caps them

PURPOSE:
  A client may top up their own balance by at most DepositCapRatio of what
  they currently owe on in_progress contracts.
*/
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositToBalance credits amount to the requester's own balance and returns
// the new balance.
//
// A deposit may not exceed DepositCapRatio of totalOwed, the sum of the
// client's unpaid jobs under in_progress contracts. With nothing owed the
// cap is zero, so any positive deposit is rejected. The cap is computed in
// the same unit of work as the credit. The credited amount is rounded to
// MoneyPlaces.
func (e *Engine) DepositToBalance(ctx context.Context, requester Profile, targetID ProfileID, amount decimal.NullDecimal) (decimal.Decimal, error) {
	if !amount.Valid {
		return decimal.Zero, badRequest("amount is required")
	}
	if amount.Decimal.IsNegative() {
		return decimal.Zero, badRequest("amount must not be negative")
	}
	if !requester.IsClient() {
		return decimal.Zero, forbidden("only clients can deposit")
	}
	if requester.ID != targetID {
		return decimal.Zero, forbidden("clients can only deposit to their own balance")
	}
	value := roundMoney(amount.Decimal)

	var balance decimal.Decimal
	err := e.store.WithTx(ctx, func(s Store) error {
		owed, err := totalOwed(ctx, s, requester.ID)
		if err != nil {
			return err
		}
		// The cap applies to the amount as sent, before rounding to cents.
		if amount.Decimal.GreaterThan(owed.Mul(DepositCapRatio)) {
			return badRequest("cannot deposit more than 25% of jobs to pay")
		}

		if value.IsZero() {
			p, err := s.GetProfile(ctx, requester.ID)
			if err != nil {
				return err
			}
			balance = p.Balance
			return nil
		}

		balance, err = s.AdjustBalance(ctx, requester.ID, value)
		if err != nil {
			return err
		}
		return s.AppendMovement(ctx, Movement{
			ID:           uuid.New(),
			Kind:         MovementDeposit,
			ProfileID:    requester.ID,
			Delta:        value,
			BalanceAfter: balance,
			At:           e.clock(),
		})
	})
	if err != nil {
		var lerr *Error
		if errors.As(err, &lerr) {
			e.log.Info().
				Int64("profile_id", int64(requester.ID)).
				Str("kind", string(lerr.Kind)).
				Msg("deposit rejected")
			return decimal.Zero, lerr
		}
		e.log.Error().Err(err).Int64("profile_id", int64(requester.ID)).Msg("deposit failed")
		return decimal.Zero, failed(KindDepositFailed, "deposit failed", err)
	}

	e.log.Info().
		Int64("profile_id", int64(requester.ID)).
		Str("amount", value.StringFixed(MoneyPlaces)).
		Msg("deposit applied")
	return balance, nil
}

// TotalOwed returns the sum of prices of the client's unpaid jobs under
// in_progress contracts.
func (e *Engine) TotalOwed(ctx context.Context, clientID ProfileID) (decimal.Decimal, error) {
	owed, err := totalOwed(ctx, e.store, clientID)
	if err != nil {
		return decimal.Zero, failed(KindInternal, "internal error", err)
	}
	return owed, nil
}

func totalOwed(ctx context.Context, s Store, clientID ProfileID) (decimal.Decimal, error) {
	unpaid := false
	jobs, err := s.ListJobs(ctx, JobFilter{
		ClientID:         clientID,
		ContractStatuses: []ContractStatus{ContractInProgress},
		Paid:             &unpaid,
	})
	if err != nil {
		return decimal.Zero, err
	}
	return sumPrices(jobs), nil
}
