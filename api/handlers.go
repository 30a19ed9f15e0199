/*
handlers.go - HTTP API handlers for the jobs ledger

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response and
  JSON serialization, and delegates every decision to ledger.Engine.

ENDPOINTS:
  Contracts:
    GET    /contracts/{id}              Contract, if the caller is a party to it
    GET    /contracts                   Caller's non-terminated contracts

  Jobs:
    GET    /jobs/unpaid                 Unpaid jobs under caller's in_progress contracts
    POST   /jobs/{job_id}/pay           Pay for a job

  Balances:
    POST   /balances/deposit/{userId}   Deposit {"amount": n} to own balance
    GET    /movements                   Caller's balance history

  Operations:
    GET    /healthz                     Database reachability
    GET    /metrics                     Prometheus metrics
    GET    /scenarios                   List demo data sets
    POST   /scenarios/load              Reset and load a demo data set

AUTHENTICATION:
  Every ledger route requires a profile_id header, resolved to a Profile by
  ProfileMiddleware before the handler runs (see middleware.go).

ERROR HANDLING:
  Errors are returned as JSON {"error", "kind"} with the status from statusFor:
  - 400: bad_request, insufficient_funds
  - 401: missing or unknown profile_id
  - 403: forbidden
  - 404: not_found
  - 500: payment_failed, deposit_failed, internal
  Messages never include infrastructure causes; those go to the log.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/jobs-ledger/ledger"
	"github.com/warp/jobs-ledger/metrics"
	"github.com/warp/jobs-ledger/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *ledger.Engine
	Store  *sqlite.Store
	Log    zerolog.Logger

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger) *Handler {
	return &Handler{
		Engine: ledger.NewEngine(store, ledger.WithLogger(log)),
		Store:  store,
		Log:    log,
	}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// GetContract returns a single contract the caller is a party to.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	profile := requester(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "contract not found", ledger.KindNotFound)
		return
	}

	contract, err := h.Engine.GetContract(r.Context(), profile, ledger.ContractID(id))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(contract))
}

// ListContracts returns the caller's non-terminated contracts.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Engine.ListContracts(r.Context(), requester(r))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContractDTOs(contracts))
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// ListUnpaidJobs returns unpaid jobs under the caller's active contracts.
func (h *Handler) ListUnpaidJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Engine.ListUnpaidJobs(r.Context(), requester(r))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTOs(jobs))
}

// PayForJob pays for a job from the caller's balance.
// POST /jobs/{job_id}/pay
func (h *Handler) PayForJob(w http.ResponseWriter, r *http.Request) {
	profile := requester(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "job_id"), 10, 64)
	if err != nil {
		metrics.ObservePayment(string(ledger.KindNotFound))
		writeError(w, http.StatusNotFound, "job not found", ledger.KindNotFound)
		return
	}

	job, err := h.Engine.PayForJob(r.Context(), profile, ledger.JobID(id))
	if err != nil {
		metrics.ObservePayment(string(ledger.KindOf(err)))
		h.writeLedgerError(w, r, err)
		return
	}
	metrics.ObservePayment("ok")
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// Deposit credits the caller's own balance.
// POST /balances/deposit/{userId}
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	profile := requester(r)

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		metrics.ObserveDeposit(string(ledger.KindBadRequest))
		writeError(w, http.StatusBadRequest, "invalid request body", ledger.KindBadRequest)
		return
	}

	// An unparsable target can never be the caller; the engine rejects it
	// after validating the amount.
	target, _ := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)

	balance, err := h.Engine.DepositToBalance(r.Context(), profile, ledger.ProfileID(target), req.Amount)
	if err != nil {
		metrics.ObserveDeposit(string(ledger.KindOf(err)))
		h.writeLedgerError(w, r, err)
		return
	}
	metrics.ObserveDeposit("ok")
	writeJSON(w, http.StatusOK, DepositResponse{Balance: balance.InexactFloat64()})
}

// ListMovements returns the caller's balance history.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Engine.ListMovements(r.Context(), requester(r))
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementDTOs(movements))
}

// GetProfile returns the caller's own profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toProfileDTO(requester(r)))
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Log.Error().Err(err).Msg("health check failed")
		writeError(w, http.StatusServiceUnavailable, "database unavailable", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindBadRequest, ledger.KindInsufficientFunds:
		return http.StatusBadRequest
	case ledger.KindForbidden:
		return http.StatusForbidden
	case ledger.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError writes err using its kind and message. Anything that is
// not a *ledger.Error is logged and reported as a generic internal error.
func (h *Handler) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var lerr *ledger.Error
	if !errors.As(err, &lerr) {
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		writeError(w, http.StatusInternalServerError, "internal error", ledger.KindInternal)
		return
	}
	if lerr.Err != nil {
		h.Log.Error().Err(lerr.Err).Str("kind", string(lerr.Kind)).Str("path", r.URL.Path).Msg(lerr.Message)
	}
	writeError(w, statusFor(lerr.Kind), lerr.Message, lerr.Kind)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, kind ledger.Kind) {
	writeJSON(w, status, ErrorResponse{Error: message, Kind: string(kind)})
}
