package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
)

// CrateHandler serves crate catalog, open and simulation requests.
type CrateHandler struct {
	engine *engine.Engine
}

// NewCrateHandler creates a new CrateHandler.
func NewCrateHandler(e *engine.Engine) *CrateHandler {
	return &CrateHandler{engine: e}
}

// ListCrates returns the crate catalog from the live game tables.
func (h *CrateHandler) ListCrates(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.engine.Registry().Crates())
}

// BuyCrates purchases crates with coins.
func (h *CrateHandler) BuyCrates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		Crate string `json:"crate"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	user, err := h.engine.BuyCrates(r.Context(), userID, req.Crate, req.Count)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"currency": user.Currency,
		"crates":   user.Crates,
	})
}

// Open consumes crates and returns the minted cards. A mid-batch
// failure still returns the cards that were produced, flagged partial.
func (h *CrateHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		Crate string `json:"crate"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	result, err := h.engine.Open(r.Context(), userID, req.Crate, req.Count)
	if err != nil {
		if result != nil && errors.Is(err, engine.ErrOpenFailed) {
			response.JSON(w, http.StatusOK, response.SuccessResponse{Data: result})
			return
		}
		response.EngineError(w, err)
		return
	}
	response.Success(w, result)
}

// Simulate runs a seeded odds simulation for a crate type.
func (h *CrateHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	crateKey := chi.URLParam(r, "crateKey")

	trials := 10_000
	if s := r.URL.Query().Get("trials"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			response.BadRequest(w, errors.New("trials must be a positive integer"))
			return
		}
		trials = n
	}
	var seed uint64
	if s := r.URL.Query().Get("seed"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			response.BadRequest(w, errors.New("seed must be an unsigned integer"))
			return
		}
		seed = n
	}

	result, err := h.engine.Simulate(r.Context(), crateKey, trials, seed)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, result)
}
