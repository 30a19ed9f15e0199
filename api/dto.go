/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the ledger model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Response wrappers

MONEY:
  Responses carry money as JSON numbers (float64), converted from
  decimal.Decimal at the edge only. Requests are decoded straight into
  decimal.NullDecimal so a missing amount is distinguishable from zero.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/jobs-ledger/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ProfileDTO represents a profile in API responses.
type ProfileDTO struct {
	ID         int64   `json:"id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Profession string  `json:"profession"`
	Balance    float64 `json:"balance"`
	Type       string  `json:"type"`
}

// ContractDTO represents a contract in API responses.
type ContractDTO struct {
	ID           int64  `json:"id"`
	Terms        string `json:"terms"`
	Status       string `json:"status"`
	ClientID     int64  `json:"ClientId"`
	ContractorID int64  `json:"ContractorId"`
	CreatedAt    string `json:"createdAt,omitempty"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// JobDTO represents a job in API responses.
type JobDTO struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Paid        bool    `json:"paid"`
	PaymentDate *string `json:"paymentDate"`
	ContractID  int64   `json:"ContractId"`
}

// DepositRequest is the body of a deposit.
type DepositRequest struct {
	Amount decimal.NullDecimal `json:"amount"`
}

// DepositResponse carries the balance after a deposit.
type DepositResponse struct {
	Balance float64 `json:"balance"`
}

// MovementDTO represents one balance change.
type MovementDTO struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Delta        float64 `json:"delta"`
	BalanceAfter float64 `json:"balanceAfter"`
	JobID        *int64  `json:"jobId,omitempty"`
	At           string  `json:"at"`
}

// ScenarioDTO describes a loadable demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toProfileDTO(p ledger.Profile) ProfileDTO {
	return ProfileDTO{
		ID:         int64(p.ID),
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Profession: p.Profession,
		Balance:    p.Balance.InexactFloat64(),
		Type:       string(p.Role),
	}
}

func toContractDTO(c ledger.Contract) ContractDTO {
	return ContractDTO{
		ID:           int64(c.ID),
		Terms:        c.Terms,
		Status:       string(c.Status),
		ClientID:     int64(c.ClientID),
		ContractorID: int64(c.ContractorID),
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

func toContractDTOs(contracts []ledger.Contract) []ContractDTO {
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c)
	}
	return dtos
}

func toJobDTO(j ledger.Job) JobDTO {
	dto := JobDTO{
		ID:          int64(j.ID),
		Description: j.Description,
		Price:       j.Price.InexactFloat64(),
		Paid:        j.Paid,
		ContractID:  int64(j.ContractID),
	}
	if j.PaymentDate != nil {
		s := j.PaymentDate.Format(time.RFC3339)
		dto.PaymentDate = &s
	}
	return dto
}

func toJobDTOs(jobs []ledger.Job) []JobDTO {
	dtos := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		dtos[i] = toJobDTO(j)
	}
	return dtos
}

func toMovementDTOs(movements []ledger.Movement) []MovementDTO {
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = MovementDTO{
			ID:           m.ID.String(),
			Kind:         string(m.Kind),
			Delta:        m.Delta.InexactFloat64(),
			BalanceAfter: m.BalanceAfter.InexactFloat64(),
			At:           m.At.Format(time.RFC3339),
		}
		if m.JobID != nil {
			id := int64(*m.JobID)
			dtos[i].JobID = &id
		}
	}
	return dtos
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
