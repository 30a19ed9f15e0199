/*
pay.go - Paying a contractor for a job

PURPOSE:
  Moves a job's price from the paying client to the contract's contractor,
  flips the job to paid and records one debit and one credit movement, all
  in a single WithTx unit.
*/
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayForJob transfers the job's price from requester to the contractor of the
// job's contract and marks the job paid.
//
// Preconditions, first failure wins:
//  1. requester is a client                                  (forbidden)
//  2. job exists, belongs to requester, contract in_progress,
//     not yet paid                                           (not_found)
//  3. requester balance >= price                             (insufficient_funds)
//
// Checks 2 and 3 run inside the unit of work, and the paid flag is flipped
// with a conditional write, so a concurrent payment of the same job loses
// with not_found. Storage failures surface as payment_failed with nothing
// applied.
func (e *Engine) PayForJob(ctx context.Context, requester Profile, jobID JobID) (Job, error) {
	if !requester.IsClient() {
		return Job{}, forbidden("only clients can pay for jobs")
	}

	var paid Job
	err := e.store.WithTx(ctx, func(s Store) error {
		job, contract, err := payableJob(ctx, s, requester.ID, jobID)
		if err != nil {
			return err
		}

		payer, err := s.GetProfile(ctx, requester.ID)
		if err != nil {
			return err
		}
		if payer.Balance.LessThan(job.Price) {
			return newError(KindInsufficientFunds, "insufficient funds")
		}

		at := e.clock()
		if err := s.MarkJobPaid(ctx, job.ID, at); err != nil {
			if errors.Is(err, ErrJobAlreadyPaid) {
				return notFound("job not found")
			}
			return err
		}

		payerAfter, err := s.AdjustBalance(ctx, payer.ID, job.Price.Neg())
		if err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return newError(KindInsufficientFunds, "insufficient funds")
			}
			return err
		}
		contractorAfter, err := s.AdjustBalance(ctx, contract.ContractorID, job.Price)
		if err != nil {
			return err
		}

		id := job.ID
		movements := []Movement{
			{Kind: MovementPaymentDebit, ProfileID: payer.ID, Delta: job.Price.Neg(), BalanceAfter: payerAfter},
			{Kind: MovementPaymentCredit, ProfileID: contract.ContractorID, Delta: job.Price, BalanceAfter: contractorAfter},
		}
		for _, m := range movements {
			m.ID = uuid.New()
			m.JobID = &id
			m.At = at
			if err := s.AppendMovement(ctx, m); err != nil {
				return err
			}
		}

		job.Paid = true
		job.PaymentDate = &at
		paid = job
		return nil
	})
	if err != nil {
		var lerr *Error
		if errors.As(err, &lerr) {
			e.log.Info().
				Int64("profile_id", int64(requester.ID)).
				Int64("job_id", int64(jobID)).
				Str("kind", string(lerr.Kind)).
				Msg("payment rejected")
			return Job{}, lerr
		}
		e.log.Error().Err(err).
			Int64("profile_id", int64(requester.ID)).
			Int64("job_id", int64(jobID)).
			Msg("payment failed")
		return Job{}, failed(KindPaymentFailed, "payment failed", err)
	}

	e.log.Info().
		Int64("profile_id", int64(requester.ID)).
		Int64("job_id", int64(paid.ID)).
		Str("amount", paid.Price.StringFixed(MoneyPlaces)).
		Msg("job paid")
	return paid, nil
}

// payableJob resolves job -> contract and applies the eligibility checks.
// Missing rows and failed checks are indistinguishable to the caller.
func payableJob(ctx context.Context, s Store, clientID ProfileID, jobID JobID) (Job, Contract, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return Job{}, Contract{}, notFound("job not found")
		}
		return Job{}, Contract{}, err
	}
	contract, err := s.GetContract(ctx, job.ContractID)
	if err != nil {
		if errors.Is(err, ErrContractNotFound) {
			return Job{}, Contract{}, notFound("job not found")
		}
		return Job{}, Contract{}, err
	}
	if !canPay(clientID, job, contract) {
		return Job{}, Contract{}, notFound("job not found")
	}
	return job, contract, nil
}

// sumPrices adds up job prices.
func sumPrices(jobs []Job) decimal.Decimal {
	total := decimal.Zero
	for _, j := range jobs {
		total = total.Add(j.Price)
	}
	return total
}
