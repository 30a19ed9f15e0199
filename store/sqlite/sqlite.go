/*
Package sqlite provides a SQLite-backed implementation of ledger.TxStore.

PURPOSE:
  Persists profiles, contracts, jobs and the movement audit trail. In
  production, the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  profiles:  Parties with role and balance (decimal stored as TEXT)
  contracts: client_id / contractor_id both reference profiles
  jobs:      Billable work, paid flag + payment_date
  movements: Append-only audit of balance changes

MONEY:
  Balances and prices are stored as decimal strings and handled with
  shopspring/decimal in Go. SQLite never does arithmetic on money.

CONCURRENCY:
  Two layers:
  - sync.RWMutex: readers share, writers and WithTx units are exclusive
  - _txlock=immediate: every BeginTx issues BEGIN IMMEDIATE, so a unit takes
    the database write lock before its first read even across processes
  Inside a unit, MarkJobPaid only updates rows with paid = 0 and
  AdjustBalance refuses to go below zero.

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := ledger.NewEngine(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/jobs-ledger/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		profession TEXT NOT NULL DEFAULT '',
		balance TEXT NOT NULL DEFAULT '0',
		role TEXT NOT NULL CHECK (role IN ('client', 'contractor')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		terms TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL CHECK (status IN ('new', 'in_progress', 'terminated')),
		client_id INTEGER NOT NULL REFERENCES profiles(id),
		contractor_id INTEGER NOT NULL REFERENCES profiles(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_client
		ON contracts(client_id, status);
	CREATE INDEX IF NOT EXISTS idx_contracts_contractor
		ON contracts(contractor_id, status);

	CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,
		payment_date TEXT,
		contract_id INTEGER NOT NULL REFERENCES contracts(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Hot path: unpaid jobs per contract (payment eligibility, deposit cap)
	CREATE INDEX IF NOT EXISTS idx_jobs_contract_paid
		ON jobs(contract_id, paid);

	-- Movements (append-only)
	CREATE TABLE IF NOT EXISTS movements (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		profile_id INTEGER NOT NULL REFERENCES profiles(id),
		delta TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		job_id INTEGER REFERENCES jobs(id),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_profile
		ON movements(profile_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// QUERIER - *sql.DB and *sql.Tx
// =============================================================================

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// STORE (ledger.Store interface)
// =============================================================================

func (s *Store) GetProfile(ctx context.Context, id ledger.ProfileID) (ledger.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProfile(ctx, s.db, id)
}

func (s *Store) GetContract(ctx context.Context, id ledger.ContractID) (ledger.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getContract(ctx, s.db, id)
}

func (s *Store) GetJob(ctx context.Context, id ledger.JobID) (ledger.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getJob(ctx, s.db, id)
}

func (s *Store) ListContracts(ctx context.Context, filter ledger.ContractFilter) ([]ledger.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listContracts(ctx, s.db, filter)
}

func (s *Store) ListJobs(ctx context.Context, filter ledger.JobFilter) ([]ledger.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listJobs(ctx, s.db, filter)
}

func (s *Store) ListMovements(ctx context.Context, profileID ledger.ProfileID) ([]ledger.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listMovements(ctx, s.db, profileID)
}

func (s *Store) InsertProfile(ctx context.Context, p ledger.Profile) (ledger.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertProfile(ctx, s.db, p)
}

func (s *Store) InsertContract(ctx context.Context, c ledger.Contract) (ledger.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertContract(ctx, s.db, c)
}

func (s *Store) InsertJob(ctx context.Context, j ledger.Job) (ledger.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertJob(ctx, s.db, j)
}

func (s *Store) AdjustBalance(ctx context.Context, id ledger.ProfileID, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.WithTx(ctx, func(tx ledger.Store) error {
		var err error
		balance, err = tx.AdjustBalance(ctx, id, delta)
		return err
	})
	return balance, err
}

func (s *Store) MarkJobPaid(ctx context.Context, id ledger.JobID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markJobPaid(ctx, s.db, id, at)
}

func (s *Store) AppendMovement(ctx context.Context, m ledger.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendMovement(ctx, s.db, m)
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore is the view handed to WithTx callbacks. It takes no locks; the
// enclosing WithTx holds the store's write lock.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetProfile(ctx context.Context, id ledger.ProfileID) (ledger.Profile, error) {
	return getProfile(ctx, ts.tx, id)
}

func (ts *txStore) GetContract(ctx context.Context, id ledger.ContractID) (ledger.Contract, error) {
	return getContract(ctx, ts.tx, id)
}

func (ts *txStore) GetJob(ctx context.Context, id ledger.JobID) (ledger.Job, error) {
	return getJob(ctx, ts.tx, id)
}

func (ts *txStore) ListContracts(ctx context.Context, filter ledger.ContractFilter) ([]ledger.Contract, error) {
	return listContracts(ctx, ts.tx, filter)
}

func (ts *txStore) ListJobs(ctx context.Context, filter ledger.JobFilter) ([]ledger.Job, error) {
	return listJobs(ctx, ts.tx, filter)
}

func (ts *txStore) ListMovements(ctx context.Context, profileID ledger.ProfileID) ([]ledger.Movement, error) {
	return listMovements(ctx, ts.tx, profileID)
}

func (ts *txStore) InsertProfile(ctx context.Context, p ledger.Profile) (ledger.Profile, error) {
	return insertProfile(ctx, ts.tx, p)
}

func (ts *txStore) InsertContract(ctx context.Context, c ledger.Contract) (ledger.Contract, error) {
	return insertContract(ctx, ts.tx, c)
}

func (ts *txStore) InsertJob(ctx context.Context, j ledger.Job) (ledger.Job, error) {
	return insertJob(ctx, ts.tx, j)
}

func (ts *txStore) AdjustBalance(ctx context.Context, id ledger.ProfileID, delta decimal.Decimal) (decimal.Decimal, error) {
	return adjustBalance(ctx, ts.tx, id, delta)
}

func (ts *txStore) MarkJobPaid(ctx context.Context, id ledger.JobID, at time.Time) error {
	return markJobPaid(ctx, ts.tx, id, at)
}

func (ts *txStore) AppendMovement(ctx context.Context, m ledger.Movement) error {
	return appendMovement(ctx, ts.tx, m)
}

// =============================================================================
// PROFILES
// =============================================================================

const profileColumns = `id, first_name, last_name, profession, balance, role, created_at, updated_at`

func getProfile(ctx context.Context, q querier, id ledger.ProfileID) (ledger.Profile, error) {
	row := q.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return ledger.Profile{}, ledger.ErrProfileNotFound
	}
	if err != nil {
		return ledger.Profile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func insertProfile(ctx context.Context, q querier, p ledger.Profile) (ledger.Profile, error) {
	now := time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		INSERT INTO profiles (id, first_name, last_name, profession, balance, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullID(int64(p.ID)),
		p.FirstName,
		p.LastName,
		p.Profession,
		p.Balance.String(),
		string(p.Role),
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return ledger.Profile{}, fmt.Errorf("failed to insert profile: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Profile{}, fmt.Errorf("failed to insert profile: %w", err)
	}
	p.ID = ledger.ProfileID(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return p, nil
}

// adjustBalance reads, checks and writes the balance. Callers run it inside
// a transaction holding the write lock, so the read is current.
func adjustBalance(ctx context.Context, q querier, id ledger.ProfileID, delta decimal.Decimal) (decimal.Decimal, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT balance FROM profiles WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, ledger.ErrProfileNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance: %w", err)
	}
	current, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance for profile %d: %w", id, err)
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, ledger.ErrInsufficientFunds
	}

	res, err := q.ExecContext(ctx,
		`UPDATE profiles SET balance = ?, updated_at = ? WHERE id = ? AND balance = ?`,
		next.String(), formatTime(time.Now().UTC()), id, raw,
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return decimal.Zero, fmt.Errorf("balance of profile %d changed concurrently", id)
	}
	return next, nil
}

func scanProfile(row interface{ Scan(dest ...any) error }) (ledger.Profile, error) {
	var (
		p                    ledger.Profile
		balance, role        string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Profession, &balance, &role, &createdAt, &updatedAt); err != nil {
		return ledger.Profile{}, err
	}
	var err error
	if p.Balance, err = parseDecimal(balance); err != nil {
		return ledger.Profile{}, fmt.Errorf("corrupt balance for profile %d: %w", p.ID, err)
	}
	p.Role = ledger.Role(role)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// =============================================================================
// CONTRACTS
// =============================================================================

const contractColumns = `c.id, c.terms, c.status, c.client_id, c.contractor_id, c.created_at, c.updated_at`

func getContract(ctx context.Context, q querier, id ledger.ContractID) (ledger.Contract, error) {
	row := q.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts c WHERE c.id = ?`, id)
	c, err := scanContract(row)
	if err == sql.ErrNoRows {
		return ledger.Contract{}, ledger.ErrContractNotFound
	}
	if err != nil {
		return ledger.Contract{}, fmt.Errorf("failed to get contract: %w", err)
	}
	return c, nil
}

func listContracts(ctx context.Context, q querier, filter ledger.ContractFilter) ([]ledger.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts c WHERE 1 = 1`
	var args []any
	if filter.ParticipantID != 0 {
		query += ` AND (c.client_id = ? OR c.contractor_id = ?)`
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}
	if len(filter.Statuses) > 0 {
		clause, statusArgs := inStatuses("c.status", filter.Statuses)
		query += ` AND ` + clause
		args = append(args, statusArgs...)
	}
	query += ` ORDER BY c.id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []ledger.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func insertContract(ctx context.Context, q querier, c ledger.Contract) (ledger.Contract, error) {
	now := time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		INSERT INTO contracts (id, terms, status, client_id, contractor_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		nullID(int64(c.ID)),
		c.Terms,
		string(c.Status),
		c.ClientID,
		c.ContractorID,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return ledger.Contract{}, fmt.Errorf("failed to insert contract: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Contract{}, fmt.Errorf("failed to insert contract: %w", err)
	}
	c.ID = ledger.ContractID(id)
	c.CreatedAt, c.UpdatedAt = now, now
	return c, nil
}

func scanContract(row interface{ Scan(dest ...any) error }) (ledger.Contract, error) {
	var (
		c                    ledger.Contract
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Terms, &status, &c.ClientID, &c.ContractorID, &createdAt, &updatedAt); err != nil {
		return ledger.Contract{}, err
	}
	c.Status = ledger.ContractStatus(status)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return c, nil
}

// =============================================================================
// JOBS
// =============================================================================

const jobColumns = `j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id, j.created_at, j.updated_at`

func getJob(ctx context.Context, q querier, id ledger.JobID) (ledger.Job, error) {
	row := q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = ?`, id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return ledger.Job{}, ledger.ErrJobNotFound
	}
	if err != nil {
		return ledger.Job{}, fmt.Errorf("failed to get job: %w", err)
	}
	return j, nil
}

func listJobs(ctx context.Context, q querier, filter ledger.JobFilter) ([]ledger.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j JOIN contracts c ON c.id = j.contract_id WHERE 1 = 1`
	var args []any
	if filter.ParticipantID != 0 {
		query += ` AND (c.client_id = ? OR c.contractor_id = ?)`
		args = append(args, filter.ParticipantID, filter.ParticipantID)
	}
	if filter.ClientID != 0 {
		query += ` AND c.client_id = ?`
		args = append(args, filter.ClientID)
	}
	if len(filter.ContractStatuses) > 0 {
		clause, statusArgs := inStatuses("c.status", filter.ContractStatuses)
		query += ` AND ` + clause
		args = append(args, statusArgs...)
	}
	if filter.Paid != nil {
		query += ` AND j.paid = ?`
		args = append(args, boolToInt(*filter.Paid))
	}
	query += ` ORDER BY j.id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []ledger.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func insertJob(ctx context.Context, q querier, j ledger.Job) (ledger.Job, error) {
	now := time.Now().UTC()
	var paymentDate sql.NullString
	if j.PaymentDate != nil {
		paymentDate = sql.NullString{String: formatTime(*j.PaymentDate), Valid: true}
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO jobs (id, description, price, paid, payment_date, contract_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		nullID(int64(j.ID)),
		j.Description,
		j.Price.String(),
		boolToInt(j.Paid),
		paymentDate,
		j.ContractID,
		formatTime(now),
		formatTime(now),
	)
	if err != nil {
		return ledger.Job{}, fmt.Errorf("failed to insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Job{}, fmt.Errorf("failed to insert job: %w", err)
	}
	j.ID = ledger.JobID(id)
	j.CreatedAt, j.UpdatedAt = now, now
	return j, nil
}

// markJobPaid flips paid only on an unpaid row. Zero rows affected means the
// job was paid by someone else first (or does not exist).
func markJobPaid(ctx context.Context, q querier, id ledger.JobID, at time.Time) error {
	res, err := q.ExecContext(ctx,
		`UPDATE jobs SET paid = 1, payment_date = ?, updated_at = ? WHERE id = ? AND paid = 0`,
		formatTime(at), formatTime(at), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark job paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark job paid: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = q.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to mark job paid: %w", err)
	}
	if exists == 0 {
		return ledger.ErrJobNotFound
	}
	return ledger.ErrJobAlreadyPaid
}

func scanJob(row interface{ Scan(dest ...any) error }) (ledger.Job, error) {
	var (
		j                    ledger.Job
		price                string
		paid                 int
		paymentDate          sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&j.ID, &j.Description, &price, &paid, &paymentDate, &j.ContractID, &createdAt, &updatedAt); err != nil {
		return ledger.Job{}, err
	}
	var err error
	if j.Price, err = parseDecimal(price); err != nil {
		return ledger.Job{}, fmt.Errorf("corrupt price for job %d: %w", j.ID, err)
	}
	j.Paid = paid != 0
	if paymentDate.Valid {
		t := parseTime(paymentDate.String)
		j.PaymentDate = &t
	}
	j.CreatedAt = parseTime(createdAt)
	j.UpdatedAt = parseTime(updatedAt)
	return j, nil
}

// =============================================================================
// MOVEMENTS
// =============================================================================

func appendMovement(ctx context.Context, q querier, m ledger.Movement) error {
	var jobID sql.NullInt64
	if m.JobID != nil {
		jobID = sql.NullInt64{Int64: int64(*m.JobID), Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO movements (id, kind, profile_id, delta, balance_after, job_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID.String(),
		string(m.Kind),
		m.ProfileID,
		m.Delta.String(),
		m.BalanceAfter.String(),
		jobID,
		formatTime(m.At),
	)
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func listMovements(ctx context.Context, q querier, profileID ledger.ProfileID) ([]ledger.Movement, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, kind, profile_id, delta, balance_after, job_id, created_at
		FROM movements
		WHERE profile_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []ledger.Movement
	for rows.Next() {
		var (
			m                               ledger.Movement
			id, kind, delta, after, created string
			jobID                           sql.NullInt64
		)
		if err := rows.Scan(&id, &kind, &m.ProfileID, &delta, &after, &jobID, &created); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.ID, _ = uuid.Parse(id)
		m.Kind = ledger.MovementKind(kind)
		if m.Delta, err = parseDecimal(delta); err != nil {
			return nil, fmt.Errorf("corrupt delta for movement %s: %w", id, err)
		}
		if m.BalanceAfter, err = parseDecimal(after); err != nil {
			return nil, fmt.Errorf("corrupt balance_after for movement %s: %w", id, err)
		}
		if jobID.Valid {
			j := ledger.JobID(jobID.Int64)
			m.JobID = &j
		}
		m.At = parseTime(created)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset deletes all data. Only for development scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"movements", "jobs", "contracts", "profiles"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	// Restart AUTOINCREMENT counters; the table only exists after the first insert.
	_, _ = s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence")
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func inStatuses(column string, statuses []ledger.ContractStatus) (string, []any) {
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, st := range statuses {
		placeholders[i] = "?"
		args[i] = string(st)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")), args
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout is fixed width so text order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
