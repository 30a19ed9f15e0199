package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/jobs-ledger/ledger"
	"github.com/warp/jobs-ledger/ledger/store"
)

func TestPayForJob_TransfersPrice(t *testing.T) {
	// GIVEN: A job priced 200, payer with 300, contractor with 50
	f := newFixture(t)
	client := f.client(t, "300")
	contractor := f.contractor(t, "50")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	// WHEN: The client pays
	paid, err := f.engine.PayForJob(f.ctx, client, job.ID)

	// THEN: 200 moves from payer to contractor and the job is paid
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaymentDate)
	assert.Equal(t, fixedNow, *paid.PaymentDate)

	requireMoney(t, "100", f.balance(t, client.ID))
	requireMoney(t, "250", f.balance(t, contractor.ID))

	stored := f.storedJob(t, job.ID)
	assert.True(t, stored.Paid)
	require.NotNil(t, stored.PaymentDate)
}

func TestPayForJob_ConservesMoney(t *testing.T) {
	prices := []string{"0.01", "1", "99.99", "150.50", "300"}

	for _, price := range prices {
		t.Run(price, func(t *testing.T) {
			f := newFixture(t)
			client := f.client(t, "300")
			contractor := f.contractor(t, "12.34")
			contract := f.contract(t, client, contractor, ledger.ContractInProgress)
			job := f.job(t, contract, price)

			before := f.balance(t, client.ID).Add(f.balance(t, contractor.ID))
			_, err := f.engine.PayForJob(f.ctx, client, job.ID)
			require.NoError(t, err)
			after := f.balance(t, client.ID).Add(f.balance(t, contractor.ID))

			assert.True(t, before.Equal(after), "before %s, after %s", before, after)
		})
	}
}

func TestPayForJob_InsufficientFunds(t *testing.T) {
	// GIVEN: A job priced 200 and a payer with 150
	f := newFixture(t)
	client := f.client(t, "150")
	contractor := f.contractor(t, "50")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	// WHEN: The client tries to pay
	_, err := f.engine.PayForJob(f.ctx, client, job.ID)

	// THEN: Rejected, nothing changes
	requireKind(t, ledger.KindInsufficientFunds, err)
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))
	assert.Equal(t, "insufficient funds", err.Error())

	requireMoney(t, "150", f.balance(t, client.ID))
	requireMoney(t, "50", f.balance(t, contractor.ID))
	assert.False(t, f.storedJob(t, job.ID).Paid)
}

func TestPayForJob_ExactBalance(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "200")
	contractor := f.contractor(t, "0")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	_, err := f.engine.PayForJob(f.ctx, client, job.ID)

	require.NoError(t, err)
	requireMoney(t, "0", f.balance(t, client.ID))
}

func TestPayForJob_SecondPaymentRunsOutOfFunds(t *testing.T) {
	// GIVEN: Two jobs of 200 and a payer with 300
	f := newFixture(t)
	client := f.client(t, "300")
	contractor := f.contractor(t, "0")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	first := f.job(t, contract, "200")
	second := f.job(t, contract, "200")

	// WHEN: Both are paid in turn
	_, err := f.engine.PayForJob(f.ctx, client, first.ID)
	require.NoError(t, err)
	_, err = f.engine.PayForJob(f.ctx, client, second.ID)

	// THEN: The second is rejected and the balance never goes negative
	requireKind(t, ledger.KindInsufficientFunds, err)
	requireMoney(t, "100", f.balance(t, client.ID))
	assert.False(t, f.storedJob(t, second.ID).Paid)
}

func TestPayForJob_AlreadyPaidIsNotFound(t *testing.T) {
	// GIVEN: A job that is already paid
	f := newFixture(t)
	client := f.client(t, "1000")
	contractor := f.contractor(t, "0")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.paidJob(t, contract, "200")

	// WHEN: The client pays again
	_, err := f.engine.PayForJob(f.ctx, client, job.ID)

	// THEN: Not found, no state change
	requireKind(t, ledger.KindNotFound, err)
	assert.True(t, ledger.IsNotFound(err))
	requireMoney(t, "1000", f.balance(t, client.ID))
	requireMoney(t, "0", f.balance(t, contractor.ID))
}

func TestPayForJob_IneligibleJobsAreNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.client(t, "1000")
	other := f.client(t, "1000")
	contractor := f.contractor(t, "0")

	active := f.contract(t, owner, contractor, ledger.ContractInProgress)
	fresh := f.contract(t, owner, contractor, ledger.ContractNew)
	terminated := f.contract(t, owner, contractor, ledger.ContractTerminated)

	tests := []struct {
		name  string
		payer ledger.Profile
		jobID ledger.JobID
	}{
		{"another client's job", other, f.job(t, active, "10").ID},
		{"contract not started", owner, f.job(t, fresh, "10").ID},
		{"contract terminated", owner, f.job(t, terminated, "10").ID},
		{"job does not exist", owner, 9999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.PayForJob(f.ctx, tt.payer, tt.jobID)

			requireKind(t, ledger.KindNotFound, err)
			assert.Equal(t, "job not found", err.Error())
		})
	}

	requireMoney(t, "1000", f.balance(t, owner.ID))
	requireMoney(t, "1000", f.balance(t, other.ID))
	requireMoney(t, "0", f.balance(t, contractor.ID))
}

func TestPayForJob_ContractorForbidden(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "1000")
	contractor := f.contractor(t, "1000")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "10")

	_, err := f.engine.PayForJob(f.ctx, contractor, job.ID)

	requireKind(t, ledger.KindForbidden, err)
	assert.True(t, ledger.IsClientError(err))
	assert.False(t, f.storedJob(t, job.ID).Paid)
}

func TestPayForJob_WritesMovements(t *testing.T) {
	f := newFixture(t)
	client := f.client(t, "300")
	contractor := f.contractor(t, "50")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	_, err := f.engine.PayForJob(f.ctx, client, job.ID)
	require.NoError(t, err)

	debits, err := f.engine.ListMovements(f.ctx, client)
	require.NoError(t, err)
	require.Len(t, debits, 1)
	assert.Equal(t, ledger.MovementPaymentDebit, debits[0].Kind)
	requireMoney(t, "-200", debits[0].Delta)
	requireMoney(t, "100", debits[0].BalanceAfter)
	require.NotNil(t, debits[0].JobID)
	assert.Equal(t, job.ID, *debits[0].JobID)

	credits, err := f.engine.ListMovements(f.ctx, contractor)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, ledger.MovementPaymentCredit, credits[0].Kind)
	requireMoney(t, "250", credits[0].BalanceAfter)
	assert.NotEqual(t, debits[0].ID, credits[0].ID)
}

func TestPayForJob_ConcurrentPaymentsSucceedOnce(t *testing.T) {
	// GIVEN: One unpaid job and a payer who could afford it many times
	f := newFixture(t)
	client := f.client(t, "10000")
	contractor := f.contractor(t, "0")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	// WHEN: Many payments race for it
	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.PayForJob(f.ctx, client, job.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	// THEN: Exactly one wins, the rest see not found
	var successes int
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		requireKind(t, ledger.KindNotFound, err)
	}
	assert.Equal(t, 1, successes)
	requireMoney(t, "9800", f.balance(t, client.ID))
	requireMoney(t, "200", f.balance(t, contractor.ID))
}

func TestPayForJob_StorageFailureRollsBack(t *testing.T) {
	// GIVEN: A store that fails after the balances were adjusted
	mem := store.NewMemory()
	failing := &failingStore{Memory: mem, failAppend: true}
	f := &fixture{ctx: context.Background(), store: mem, engine: ledger.NewEngine(mem)}
	client := f.client(t, "300")
	contractor := f.contractor(t, "50")
	contract := f.contract(t, client, contractor, ledger.ContractInProgress)
	job := f.job(t, contract, "200")

	engine := ledger.NewEngine(failing)

	// WHEN: The client pays
	_, err := engine.PayForJob(f.ctx, client, job.ID)

	// THEN: A generic retryable failure, and nothing was applied
	requireKind(t, ledger.KindPaymentFailed, err)
	assert.Equal(t, "payment failed", err.Error())
	assert.True(t, ledger.IsRetryable(err))
	assert.True(t, errors.Is(err, errDiskFull))

	requireMoney(t, "300", f.balance(t, client.ID))
	requireMoney(t, "50", f.balance(t, contractor.ID))
	assert.False(t, f.storedJob(t, job.ID).Paid)

	movements, err := mem.ListMovements(f.ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

// =============================================================================
// FAILURE INJECTION
// =============================================================================

var errDiskFull = errors.New("disk full")

// failingStore runs units of work against the wrapped memory store but
// fails every AppendMovement, which comes after all balance writes.
type failingStore struct {
	*store.Memory
	failAppend bool
}

func (s *failingStore) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	return s.Memory.WithTx(ctx, func(tx ledger.Store) error {
		return fn(&failingView{Store: tx, failAppend: s.failAppend})
	})
}

type failingView struct {
	ledger.Store
	failAppend bool
}

func (v *failingView) AppendMovement(ctx context.Context, m ledger.Movement) error {
	if v.failAppend {
		return errDiskFull
	}
	return v.Store.AppendMovement(ctx, m)
}
