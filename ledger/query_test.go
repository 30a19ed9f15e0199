package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/jobs-ledger/ledger"
)

func contractIDs(contracts []ledger.Contract) []ledger.ContractID {
	ids := make([]ledger.ContractID, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}
	return ids
}

func jobIDs(jobs []ledger.Job) []ledger.JobID {
	ids := make([]ledger.JobID, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	return ids
}

func TestGetContract_OnlyParties(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "0")
	contractor := f.contractor(t, "0")
	outsider := f.client(t, "0")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)

	got, err := f.engine.GetContract(f.ctx, client, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.ID, got.ID)

	_, err = f.engine.GetContract(f.ctx, contractor, contract.ID)
	require.NoError(t, err)

	_, err = f.engine.GetContract(f.ctx, outsider, contract.ID)
	requireKind(t, ledger.KindNotFound, err)

	_, err = f.engine.GetContract(f.ctx, client, 9999)
	requireKind(t, ledger.KindNotFound, err)
}

func TestListContracts_ExcludesTerminated(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "0")
	contractor := f.contractor(t, "0")
	other := f.client(t, "0")

	fresh := f.contract(t, client, contractor, ledger.ContractNew)
	active := f.contract(t, client, contractor, ledger.ContractInProgress)
	f.contract(t, client, contractor, ledger.ContractTerminated)
	foreign := f.contract(t, other, contractor, ledger.ContractInProgress)

	contracts, err := f.engine.ListContracts(f.ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []ledger.ContractID{fresh.ID, active.ID}, contractIDs(contracts))

	contracts, err = f.engine.ListContracts(f.ctx, contractor)
	require.NoError(t, err)
	assert.Equal(t, []ledger.ContractID{fresh.ID, active.ID, foreign.ID}, contractIDs(contracts))
}

func TestListUnpaidJobs(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "0")
	contractor := f.contractor(t, "0")
	other := f.client(t, "0")

	active := f.contract(t, client, contractor, ledger.ContractInProgress)
	unpaid := f.job(t, active, "10")
	f.paidJob(t, active, "10")
	f.job(t, f.contract(t, client, contractor, ledger.ContractNew), "10")
	foreign := f.job(t, f.contract(t, other, contractor, ledger.ContractInProgress), "10")

	jobs, err := f.engine.ListUnpaidJobs(f.ctx, client)
	require.NoError(t, err)
	assert.Equal(t, []ledger.JobID{unpaid.ID}, jobIDs(jobs))

	jobs, err = f.engine.ListUnpaidJobs(f.ctx, contractor)
	require.NoError(t, err)
	assert.Equal(t, []ledger.JobID{unpaid.ID, foreign.ID}, jobIDs(jobs))
}
