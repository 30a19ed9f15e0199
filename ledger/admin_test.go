package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/jobs-ledger/ledger"
)

func TestCreateProfile_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateProfile(f.ctx, ledger.Profile{Role: "admin"})
	requireKind(t, ledger.KindBadRequest, err)

	_, err = f.engine.CreateProfile(f.ctx, ledger.Profile{Role: ledger.RoleClient, Balance: dec("-1")})
	requireKind(t, ledger.KindBadRequest, err)

	p, err := f.engine.CreateProfile(f.ctx, ledger.Profile{Role: ledger.RoleClient, Balance: dec("10.456")})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	requireMoney(t, "10.46", p.Balance)
}

func TestCreateContract_ChecksRoles(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "0")
	contractor := f.contractor(t, "0")

	tests := []struct {
		name       string
		client     ledger.ProfileID
		contractor ledger.ProfileID
		message    string
	}{
		{"swapped", contractor.ID, client.ID, "client_id must reference a client profile"},
		{"two clients", client.ID, client.ID, "contractor_id must reference a contractor profile"},
		{"unknown client", 9999, contractor.ID, "client_id must reference a client profile"},
		{"unknown contractor", client.ID, 9999, "contractor_id must reference a contractor profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateContract(f.ctx, ledger.Contract{
				Status:       ledger.ContractNew,
				ClientID:     tt.client,
				ContractorID: tt.contractor,
			})

			requireKind(t, ledger.KindBadRequest, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	_, err := f.engine.CreateContract(f.ctx, ledger.Contract{Status: "paused", ClientID: client.ID, ContractorID: contractor.ID})
	requireKind(t, ledger.KindBadRequest, err)

	contracts, err := f.store.ListContracts(f.ctx, ledger.ContractFilter{})
	require.NoError(t, err)
	assert.Empty(t, contracts)
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)
	contract := f.contract(t, f.client(t, "0"), f.contractor(t, "0"), ledger.ContractInProgress)
	paidOn := time.Date(2020, time.August, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		job  ledger.Job
	}{
		{"zero price", ledger.Job{Price: dec("0"), ContractID: contract.ID}},
		{"negative price", ledger.Job{Price: dec("-5"), ContractID: contract.ID}},
		{"paid without date", ledger.Job{Price: dec("5"), Paid: true, ContractID: contract.ID}},
		{"date without paid", ledger.Job{Price: dec("5"), PaymentDate: &paidOn, ContractID: contract.ID}},
		{"unknown contract", ledger.Job{Price: dec("5"), ContractID: 9999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateJob(f.ctx, tt.job)
			requireKind(t, ledger.KindBadRequest, err)
		})
	}

	job, err := f.engine.CreateJob(f.ctx, ledger.Job{Price: dec("5"), Paid: true, PaymentDate: &paidOn, ContractID: contract.ID})
	require.NoError(t, err)
	assert.True(t, job.Paid)
}
