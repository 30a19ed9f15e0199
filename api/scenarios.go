/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built data sets that populate the database with profiles,
	contracts and jobs for demos and handler tests. Loaders go through the
	ledger engine's administrative writes, so seeded data obeys the same
	validation as anything created later.

AVAILABLE SCENARIOS:

	marketplace:      4 clients, 4 contractors, 9 contracts, 14 jobs
	single-contract:  One client, one contractor, two unpaid jobs

HOW SCENARIOS WORK:
 1. Reset database (clear all data, restart IDs)
 2. Create profiles
 3. Create contracts between them
 4. Create jobs, some already paid with historical payment dates

USAGE VIA API:

	POST /scenarios/load
	{"scenario_id": "marketplace"}

NOTE:

	Scenarios reset the database. Routes are only mounted in development.

SEE ALSO:
  - handlers.go: Ledger handlers exercised against this data
  - ledger/admin.go: CreateProfile, CreateContract, CreateJob
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/jobs-ledger/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "marketplace",
		Name:        "Marketplace",
		Description: "Four clients and four contractors with contracts in every status and a mix of paid and unpaid jobs",
	},
	{
		ID:          "single-contract",
		Name:        "Single Contract",
		Description: "One client paying one contractor for two jobs",
	},
}

// ErrUnknownScenario is returned by Seed for an unlisted scenario ID.
var ErrUnknownScenario = errors.New("unknown scenario")

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", ledger.KindBadRequest)
		return
	}

	if err := h.Seed(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusBadRequest, "unknown scenario", ledger.KindBadRequest)
			return
		}
		h.Log.Error().Err(err).Str("scenario", req.ScenarioID).Msg("failed to load scenario")
		writeError(w, http.StatusInternalServerError, "failed to load scenario", ledger.KindInternal)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// Seed resets the database and loads the named scenario.
func (h *Handler) Seed(ctx context.Context, scenarioID string) error {
	var load func(context.Context) error
	switch scenarioID {
	case "marketplace":
		load = h.loadMarketplaceScenario
	case "single-contract":
		load = h.loadSingleContractScenario
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, scenarioID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		return fmt.Errorf("load %s: %w", scenarioID, err)
	}
	h.currentScenario = scenarioID
	h.Log.Info().Str("scenario", scenarioID).Msg("scenario loaded")
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type seedProfile struct {
	id         ledger.ProfileID
	first      string
	last       string
	profession string
	balance    string
	role       ledger.Role
}

type seedContract struct {
	id         ledger.ContractID
	terms      string
	status     ledger.ContractStatus
	client     ledger.ProfileID
	contractor ledger.ProfileID
}

type seedJob struct {
	description string
	price       string
	contract    ledger.ContractID
	paidOn      string // YYYY-MM-DD, empty when unpaid
}

func (h *Handler) loadMarketplaceScenario(ctx context.Context) error {
	profiles := []seedProfile{
		{1, "Harry", "Potter", "Wizard", "1150", ledger.RoleClient},
		{2, "Mr", "Robot", "Hacker", "231.11", ledger.RoleClient},
		{3, "John", "Snow", "Knows nothing", "451.3", ledger.RoleClient},
		{4, "Ash", "Kethcum", "Pokemon master", "1.3", ledger.RoleClient},
		{5, "John", "Lenon", "Musician", "64", ledger.RoleContractor},
		{6, "Linus", "Torvalds", "Programmer", "1214", ledger.RoleContractor},
		{7, "Alan", "Turing", "Programmer", "22", ledger.RoleContractor},
		{8, "Aragorn", "II Elessar Telcontarion", "Fighter", "314", ledger.RoleContractor},
	}

	contracts := []seedContract{
		{1, "bla bla bla", ledger.ContractTerminated, 1, 5},
		{2, "bla bla bla", ledger.ContractInProgress, 1, 6},
		{3, "bla bla bla", ledger.ContractInProgress, 2, 6},
		{4, "bla bla bla", ledger.ContractInProgress, 2, 7},
		{5, "bla bla bla", ledger.ContractNew, 3, 8},
		{6, "bla bla bla", ledger.ContractInProgress, 3, 7},
		{7, "bla bla bla", ledger.ContractInProgress, 4, 7},
		{8, "bla bla bla", ledger.ContractInProgress, 4, 6},
		{9, "bla bla bla", ledger.ContractInProgress, 4, 8},
	}

	// Jobs get IDs 1..14 in order.
	jobs := []seedJob{
		{"work", "200", 1, ""},
		{"work", "201", 2, ""},
		{"work", "202", 3, ""},
		{"work", "200", 4, ""},
		{"work", "200", 7, ""},
		{"work", "2020", 7, "2020-08-15"},
		{"work", "200", 2, "2020-08-15"},
		{"work", "200", 3, "2020-08-16"},
		{"work", "200", 1, "2020-08-17"},
		{"work", "200", 5, "2020-08-17"},
		{"work", "21", 1, "2020-08-10"},
		{"work", "21", 2, "2020-08-15"},
		{"work", "121", 3, "2020-08-15"},
		{"work", "121", 3, "2020-08-14"},
	}

	return h.seed(ctx, profiles, contracts, jobs)
}

func (h *Handler) loadSingleContractScenario(ctx context.Context) error {
	profiles := []seedProfile{
		{1, "Ada", "Lovelace", "Analyst", "500", ledger.RoleClient},
		{2, "Grace", "Hopper", "Programmer", "0", ledger.RoleContractor},
	}
	contracts := []seedContract{
		{1, "compiler work", ledger.ContractInProgress, 1, 2},
	}
	jobs := []seedJob{
		{"parser", "150", 1, ""},
		{"code generator", "250", 1, ""},
	}
	return h.seed(ctx, profiles, contracts, jobs)
}

func (h *Handler) seed(ctx context.Context, profiles []seedProfile, contracts []seedContract, jobs []seedJob) error {
	for _, p := range profiles {
		if _, err := h.Engine.CreateProfile(ctx, ledger.Profile{
			ID:         p.id,
			FirstName:  p.first,
			LastName:   p.last,
			Profession: p.profession,
			Balance:    decimal.RequireFromString(p.balance),
			Role:       p.role,
		}); err != nil {
			return fmt.Errorf("profile %d: %w", p.id, err)
		}
	}

	for _, c := range contracts {
		if _, err := h.Engine.CreateContract(ctx, ledger.Contract{
			ID:           c.id,
			Terms:        c.terms,
			Status:       c.status,
			ClientID:     c.client,
			ContractorID: c.contractor,
		}); err != nil {
			return fmt.Errorf("contract %d: %w", c.id, err)
		}
	}

	for i, j := range jobs {
		job := ledger.Job{
			Description: j.description,
			Price:       decimal.RequireFromString(j.price),
			ContractID:  j.contract,
		}
		if j.paidOn != "" {
			paidOn, err := time.Parse(time.DateOnly, j.paidOn)
			if err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
			job.Paid = true
			job.PaymentDate = &paidOn
		}
		if _, err := h.Engine.CreateJob(ctx, job); err != nil {
			return fmt.Errorf("job %d: %w", i+1, err)
		}
	}
	return nil
}
