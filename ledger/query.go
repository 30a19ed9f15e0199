/*
query.go - Read operations scoped to the requester

PURPOSE:
  Every read goes through HasAccess. Rows the requester is not a party to
  are reported as not found rather than forbidden.
*/
package ledger

import (
	"context"
	"errors"
)

// =============================================================================
// READ SIDE - Filtered by HasAccess
// =============================================================================

// GetContract returns the contract if requester is a party to it. Contracts
// the requester cannot see are reported as not found.
func (e *Engine) GetContract(ctx context.Context, requester Profile, id ContractID) (Contract, error) {
	c, err := e.store.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, ErrContractNotFound) {
			return Contract{}, notFound("contract not found")
		}
		return Contract{}, failed(KindInternal, "failed to load contract", err)
	}
	if !HasAccess(requester, c) {
		return Contract{}, notFound("contract not found")
	}
	return c, nil
}

// ListContracts returns the requester's contracts that are not terminated.
func (e *Engine) ListContracts(ctx context.Context, requester Profile) ([]Contract, error) {
	contracts, err := e.store.ListContracts(ctx, ContractFilter{
		ParticipantID: requester.ID,
		Statuses:      ActiveStatuses,
	})
	if err != nil {
		return nil, failed(KindInternal, "failed to list contracts", err)
	}

	visible := contracts[:0]
	for _, c := range contracts {
		if HasAccess(requester, c) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// ListUnpaidJobs returns unpaid jobs under the requester's in_progress contracts.
func (e *Engine) ListUnpaidJobs(ctx context.Context, requester Profile) ([]Job, error) {
	unpaid := false
	jobs, err := e.store.ListJobs(ctx, JobFilter{
		ParticipantID:    requester.ID,
		ContractStatuses: []ContractStatus{ContractInProgress},
		Paid:             &unpaid,
	})
	if err != nil {
		return nil, failed(KindInternal, "failed to list jobs", err)
	}
	return jobs, nil
}

// ListMovements returns the requester's balance history, oldest first.
func (e *Engine) ListMovements(ctx context.Context, requester Profile) ([]Movement, error) {
	movements, err := e.store.ListMovements(ctx, requester.ID)
	if err != nil {
		return nil, failed(KindInternal, "failed to list movements", err)
	}
	return movements, nil
}
