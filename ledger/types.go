/*
Package ledger provides the payment and deposit engine of the jobs marketplace.

PURPOSE:
  Clients contract contractors for jobs and pay for those jobs from a balance.
  This package owns the rules for how money moves between the two parties:
  who may pay, which jobs are payable, how much a client may deposit, and the
  guarantee that every movement is applied as one all-or-nothing unit.

KEY CONCEPTS IN THIS FILE (types.go):
  - Profile:  A client or contractor with a balance
  - Contract: An agreement binding one client and one contractor
  - Job:      A billable unit of work under a contract, paid at most once
  - Movement: Audit record written next to every balance change

DESIGN PRINCIPLES:
  1. Precision: Money is decimal.Decimal, never float64
  2. Type Safety: Distinct ID types keep profiles, contracts and jobs apart
  3. Two writers: Balances and the paid flag change only via PayForJob and
     DepositToBalance (see pay.go, deposit.go)

SEE ALSO:
  - store.go:  Persistence interfaces
  - engine.go: The Engine that runs the money-moving operations
  - policy.go: Access rules shared by the operations and the read side
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProfileID int64
type ContractID int64
type JobID int64

// =============================================================================
// PROFILE
// =============================================================================

// Role is fixed when a profile is created.
type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleContractor
}

type Profile struct {
	ID         ProfileID
	FirstName  string
	LastName   string
	Profession string
	Balance    decimal.Decimal
	Role       Role
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

func (p Profile) IsClient() bool     { return p.Role == RoleClient }
func (p Profile) IsContractor() bool { return p.Role == RoleContractor }

// =============================================================================
// CONTRACT
// =============================================================================

type ContractStatus string

const (
	ContractNew        ContractStatus = "new"
	ContractInProgress ContractStatus = "in_progress"
	ContractTerminated ContractStatus = "terminated"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractNew, ContractInProgress, ContractTerminated:
		return true
	}
	return false
}

// ActiveStatuses are the statuses of contracts that are not terminated.
var ActiveStatuses = []ContractStatus{ContractNew, ContractInProgress}

type Contract struct {
	ID           ContractID
	Terms        string
	Status       ContractStatus
	ClientID     ProfileID
	ContractorID ProfileID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// =============================================================================
// JOB
// =============================================================================

// Job is frozen once Paid is true: price and contract never change again.
type Job struct {
	ID          JobID
	Description string
	Price       decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
	ContractID  ContractID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// MOVEMENT - Audit trail of balance changes
// =============================================================================

type MovementKind string

const (
	MovementPaymentDebit  MovementKind = "payment_debit"
	MovementPaymentCredit MovementKind = "payment_credit"
	MovementDeposit       MovementKind = "deposit"
)

// Movement records one balance change. Movements are append-only and are
// written in the same unit of work as the change they describe. The profile
// balance stays the source of truth; movements are never replayed.
type Movement struct {
	ID           uuid.UUID
	Kind         MovementKind
	ProfileID    ProfileID
	Delta        decimal.Decimal
	BalanceAfter decimal.Decimal
	JobID        *JobID
	At           time.Time
}

// =============================================================================
// FILTERS
// =============================================================================

// ContractFilter selects contracts. Zero fields do not filter.
type ContractFilter struct {
	// ParticipantID matches either the client or the contractor side.
	ParticipantID ProfileID
	Statuses      []ContractStatus
}

// JobFilter selects jobs through their parent contract. Zero fields do not filter.
type JobFilter struct {
	ParticipantID    ProfileID
	ClientID         ProfileID
	ContractStatuses []ContractStatus
	Paid             *bool
}

// =============================================================================
// MONEY
// =============================================================================

// MoneyPlaces is the number of decimal places kept on balances and prices.
const MoneyPlaces = 2

// DepositCapRatio is the share of a client's outstanding jobs they may
// deposit in a single operation.
var DepositCapRatio = decimal.RequireFromString("0.25")

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
