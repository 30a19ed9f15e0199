/*
errors.go - Error taxonomy for the payment and deposit engine

PURPOSE:
  Every error leaving an Engine operation is an *Error carrying a Kind and a
  human-readable Message. Callers branch on the kind (errors.Is with the
  sentinels below, or KindOf) and show the message; the infrastructure cause
  stays in Err for logs and is never part of Message.

ERROR CATEGORIES:
  1. Validation  - bad_request, forbidden: rejected before touching the store
  2. Eligibility - not_found: uniform for every payment precondition on the job
  3. Business    - insufficient_funds, bad_request (deposit cap)
  4. Infra       - payment_failed, deposit_failed, internal: nothing was applied

STORE ERRORS:
  Stores return the Err*NotFound / ErrJobAlreadyPaid / ErrInsufficientFunds
  sentinels. The engine converts them; they never reach callers unconverted.

SEE ALSO:
  - api/handlers.go: Maps kinds to HTTP status codes
*/
package ledger

import (
	"errors"
)

// =============================================================================
// STORE SENTINELS
// =============================================================================

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrContractNotFound = errors.New("contract not found")
	ErrJobNotFound      = errors.New("job not found")

	// ErrJobAlreadyPaid is returned by MarkJobPaid when the paid flag is
	// already set. This is how a concurrent double payment is detected.
	ErrJobAlreadyPaid = errors.New("job already paid")
)

// =============================================================================
// KINDS
// =============================================================================

type Kind string

const (
	KindBadRequest        Kind = "bad_request"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindPaymentFailed     Kind = "payment_failed"
	KindDepositFailed     Kind = "deposit_failed"
	KindInternal          Kind = "internal"
)

// Kind sentinels, one per Kind. Use with errors.Is.
var (
	ErrBadRequest        = errors.New("bad request")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrDepositFailed     = errors.New("deposit failed")
	ErrInternal          = errors.New("internal error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindInsufficientFunds:
		return ErrInsufficientFunds
	case KindPaymentFailed:
		return ErrPaymentFailed
	case KindDepositFailed:
		return ErrDepositFailed
	default:
		return ErrInternal
	}
}

// =============================================================================
// ERROR
// =============================================================================

// Error is the tagged outcome of a failed operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error // infrastructure cause, for logs only
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func badRequest(message string) *Error { return newError(KindBadRequest, message) }
func forbidden(message string) *Error  { return newError(KindForbidden, message) }
func notFound(message string) *Error   { return newError(KindNotFound, message) }

// failed wraps an infrastructure error under a generic message.
func failed(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// KindOf returns the kind of err, or KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsClientError returns true if the error is due to the caller's input or state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInsufficientFunds)
}

// IsNotFound returns true if the error indicates a missing or invisible resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable returns true if the whole operation may be retried unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPaymentFailed) || errors.Is(err, ErrDepositFailed)
}
