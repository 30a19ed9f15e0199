package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/warp/jobs-ledger/ledger"
	"github.com/warp/jobs-ledger/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ctx    context.Context
	store  *store.Memory
	engine *ledger.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	return &fixture{
		ctx:    context.Background(),
		store:  mem,
		engine: ledger.NewEngine(mem, ledger.WithClock(func() time.Time { return fixedNow })),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func (f *fixture) profile(t *testing.T, role ledger.Role, balance string) ledger.Profile {
	t.Helper()
	p, err := f.engine.CreateProfile(f.ctx, ledger.Profile{
		FirstName:  "Test",
		LastName:   string(role),
		Profession: "Tester",
		Balance:    dec(balance),
		Role:       role,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) client(t *testing.T, balance string) ledger.Profile {
	return f.profile(t, ledger.RoleClient, balance)
}

func (f *fixture) contractor(t *testing.T, balance string) ledger.Profile {
	return f.profile(t, ledger.RoleContractor, balance)
}

func (f *fixture) contract(t *testing.T, client, contractor ledger.Profile, status ledger.ContractStatus) ledger.Contract {
	t.Helper()
	c, err := f.engine.CreateContract(f.ctx, ledger.Contract{
		Terms:        "terms",
		Status:       status,
		ClientID:     client.ID,
		ContractorID: contractor.ID,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) job(t *testing.T, contract ledger.Contract, price string) ledger.Job {
	t.Helper()
	j, err := f.engine.CreateJob(f.ctx, ledger.Job{
		Description: "work",
		Price:       dec(price),
		ContractID:  contract.ID,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) paidJob(t *testing.T, contract ledger.Contract, price string) ledger.Job {
	t.Helper()
	paidOn := fixedNow.AddDate(0, -1, 0)
	j, err := f.engine.CreateJob(f.ctx, ledger.Job{
		Description: "old work",
		Price:       dec(price),
		Paid:        true,
		PaymentDate: &paidOn,
		ContractID:  contract.ID,
	})
	require.NoError(t, err)
	return j
}

func (f *fixture) balance(t *testing.T, id ledger.ProfileID) decimal.Decimal {
	t.Helper()
	p, err := f.store.GetProfile(f.ctx, id)
	require.NoError(t, err)
	return p.Balance
}

func (f *fixture) storedJob(t *testing.T, id ledger.JobID) ledger.Job {
	t.Helper()
	j, err := f.store.GetJob(f.ctx, id)
	require.NoError(t, err)
	return j
}

// requireMoney compares decimals by value, ignoring exponent.
func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s", want, got)
}

func requireKind(t *testing.T, kind ledger.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, ledger.KindOf(err), "error: %v", err)
}
