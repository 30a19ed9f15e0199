/*
Package store provides an in-memory implementation of ledger.TxStore.

PURPOSE:
  Backs engine tests and local runs without a database file. Behaves like
  the SQLite store: IDs are assigned on insert, explicit IDs must be unused,
  balances never go negative and a job is marked paid at most once.

TRANSACTIONS:
  WithTx holds the write lock for the whole unit and restores a snapshot of
  the state if fn returns an error.
*/
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/jobs-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.TxStore. WithTx holds the write lock for the whole
// unit and restores a snapshot on error.
type Memory struct {
	mu    sync.RWMutex
	state memoryState
	clock func() time.Time
}

type memoryState struct {
	profiles  map[ledger.ProfileID]ledger.Profile
	contracts map[ledger.ContractID]ledger.Contract
	jobs      map[ledger.JobID]ledger.Job
	movements []ledger.Movement

	nextProfile  ledger.ProfileID
	nextContract ledger.ContractID
	nextJob      ledger.JobID
}

func NewMemory() *Memory {
	return &Memory{
		state: memoryState{
			profiles:  make(map[ledger.ProfileID]ledger.Profile),
			contracts: make(map[ledger.ContractID]ledger.Contract),
			jobs:      make(map[ledger.JobID]ledger.Job),
		},
		clock: time.Now,
	}
}

func (m *Memory) GetProfile(ctx context.Context, id ledger.ProfileID) (ledger.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().GetProfile(ctx, id)
}

func (m *Memory) GetContract(ctx context.Context, id ledger.ContractID) (ledger.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().GetContract(ctx, id)
}

func (m *Memory) GetJob(ctx context.Context, id ledger.JobID) (ledger.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().GetJob(ctx, id)
}

func (m *Memory) ListContracts(ctx context.Context, filter ledger.ContractFilter) ([]ledger.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().ListContracts(ctx, filter)
}

func (m *Memory) ListJobs(ctx context.Context, filter ledger.JobFilter) ([]ledger.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().ListJobs(ctx, filter)
}

func (m *Memory) ListMovements(ctx context.Context, profileID ledger.ProfileID) ([]ledger.Movement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.view().ListMovements(ctx, profileID)
}

func (m *Memory) InsertProfile(ctx context.Context, p ledger.Profile) (ledger.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().InsertProfile(ctx, p)
}

func (m *Memory) InsertContract(ctx context.Context, c ledger.Contract) (ledger.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().InsertContract(ctx, c)
}

func (m *Memory) InsertJob(ctx context.Context, j ledger.Job) (ledger.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().InsertJob(ctx, j)
}

func (m *Memory) AdjustBalance(ctx context.Context, id ledger.ProfileID, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().AdjustBalance(ctx, id, delta)
}

func (m *Memory) MarkJobPaid(ctx context.Context, id ledger.JobID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().MarkJobPaid(ctx, id, at)
}

func (m *Memory) AppendMovement(ctx context.Context, mv ledger.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view().AppendMovement(ctx, mv)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (m *Memory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()

	if err := fn(m.view()); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (s memoryState) clone() memoryState {
	c := s
	c.profiles = make(map[ledger.ProfileID]ledger.Profile, len(s.profiles))
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	c.contracts = make(map[ledger.ContractID]ledger.Contract, len(s.contracts))
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	c.jobs = make(map[ledger.JobID]ledger.Job, len(s.jobs))
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	c.movements = append([]ledger.Movement(nil), s.movements...)
	return c
}

// view returns an unlocked ledger.Store over the current state.
// Callers must hold m.mu.
func (m *Memory) view() *memoryView {
	return &memoryView{parent: m}
}

type memoryView struct {
	parent *Memory
}

func (v *memoryView) GetProfile(_ context.Context, id ledger.ProfileID) (ledger.Profile, error) {
	p, ok := v.parent.state.profiles[id]
	if !ok {
		return ledger.Profile{}, ledger.ErrProfileNotFound
	}
	return p, nil
}

func (v *memoryView) GetContract(_ context.Context, id ledger.ContractID) (ledger.Contract, error) {
	c, ok := v.parent.state.contracts[id]
	if !ok {
		return ledger.Contract{}, ledger.ErrContractNotFound
	}
	return c, nil
}

func (v *memoryView) GetJob(_ context.Context, id ledger.JobID) (ledger.Job, error) {
	j, ok := v.parent.state.jobs[id]
	if !ok {
		return ledger.Job{}, ledger.ErrJobNotFound
	}
	return j, nil
}

func (v *memoryView) ListContracts(_ context.Context, filter ledger.ContractFilter) ([]ledger.Contract, error) {
	var result []ledger.Contract
	for _, c := range v.parent.state.contracts {
		if filter.ParticipantID != 0 && c.ClientID != filter.ParticipantID && c.ContractorID != filter.ParticipantID {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, c.Status) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v *memoryView) ListJobs(_ context.Context, filter ledger.JobFilter) ([]ledger.Job, error) {
	var result []ledger.Job
	for _, j := range v.parent.state.jobs {
		c, ok := v.parent.state.contracts[j.ContractID]
		if !ok {
			continue
		}
		if filter.ParticipantID != 0 && c.ClientID != filter.ParticipantID && c.ContractorID != filter.ParticipantID {
			continue
		}
		if filter.ClientID != 0 && c.ClientID != filter.ClientID {
			continue
		}
		if len(filter.ContractStatuses) > 0 && !hasStatus(filter.ContractStatuses, c.Status) {
			continue
		}
		if filter.Paid != nil && j.Paid != *filter.Paid {
			continue
		}
		result = append(result, j)
	}
	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

func (v *memoryView) ListMovements(_ context.Context, profileID ledger.ProfileID) ([]ledger.Movement, error) {
	var result []ledger.Movement
	for _, mv := range v.parent.state.movements {
		if mv.ProfileID == profileID {
			result = append(result, mv)
		}
	}
	return result, nil
}

func (v *memoryView) InsertProfile(_ context.Context, p ledger.Profile) (ledger.Profile, error) {
	s := &v.parent.state
	if p.ID == 0 {
		p.ID = s.nextProfile + 1
	}
	if _, exists := s.profiles[p.ID]; exists {
		return p, fmt.Errorf("profile %d already exists", p.ID)
	}
	if p.ID > s.nextProfile {
		s.nextProfile = p.ID
	}
	now := v.parent.clock().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.profiles[p.ID] = p
	return p, nil
}

func (v *memoryView) InsertContract(_ context.Context, c ledger.Contract) (ledger.Contract, error) {
	s := &v.parent.state
	if c.ID == 0 {
		c.ID = s.nextContract + 1
	}
	if _, exists := s.contracts[c.ID]; exists {
		return c, fmt.Errorf("contract %d already exists", c.ID)
	}
	if c.ID > s.nextContract {
		s.nextContract = c.ID
	}
	now := v.parent.clock().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.contracts[c.ID] = c
	return c, nil
}

func (v *memoryView) InsertJob(_ context.Context, j ledger.Job) (ledger.Job, error) {
	s := &v.parent.state
	if j.ID == 0 {
		j.ID = s.nextJob + 1
	}
	if _, exists := s.jobs[j.ID]; exists {
		return j, fmt.Errorf("job %d already exists", j.ID)
	}
	if j.ID > s.nextJob {
		s.nextJob = j.ID
	}
	now := v.parent.clock().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	s.jobs[j.ID] = j
	return j, nil
}

func (v *memoryView) AdjustBalance(_ context.Context, id ledger.ProfileID, delta decimal.Decimal) (decimal.Decimal, error) {
	p, ok := v.parent.state.profiles[id]
	if !ok {
		return decimal.Zero, ledger.ErrProfileNotFound
	}
	next := p.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ledger.ErrInsufficientFunds
	}
	p.Balance = next
	p.UpdatedAt = v.parent.clock().UTC()
	v.parent.state.profiles[id] = p
	return next, nil
}

func (v *memoryView) MarkJobPaid(_ context.Context, id ledger.JobID, at time.Time) error {
	j, ok := v.parent.state.jobs[id]
	if !ok {
		return ledger.ErrJobNotFound
	}
	if j.Paid {
		return ledger.ErrJobAlreadyPaid
	}
	j.Paid = true
	j.PaymentDate = &at
	j.UpdatedAt = at
	v.parent.state.jobs[id] = j
	return nil
}

func (v *memoryView) AppendMovement(_ context.Context, mv ledger.Movement) error {
	v.parent.state.movements = append(v.parent.state.movements, mv)
	return nil
}

func hasStatus(statuses []ledger.ContractStatus, s ledger.ContractStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
