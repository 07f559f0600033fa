package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
	"circlecrates/internal/storage"
)

// actorHeader carries the caller identity for owner-gated operations.
const actorHeader = "X-Actor-ID"

// AdminHandler serves owner-only moderation and maintenance requests.
type AdminHandler struct {
	engine *engine.Engine
	users  storage.UserRepository
	db     *storage.DB
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(e *engine.Engine, users storage.UserRepository, db *storage.DB) *AdminHandler {
	return &AdminHandler{engine: e, users: users, db: db}
}

// GiveCrates grants crates to a user.
func (h *AdminHandler) GiveCrates(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		Crate string `json:"crate"`
		Count int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	user, err := h.engine.GiveCrates(r.Context(), r.Header.Get(actorHeader), userID, req.Crate, req.Count)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, user.Crates)
}

// GiveCard mints a card directly into a user's inventory.
func (h *AdminHandler) GiveCard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		Player   string `json:"player"`
		Stars    int    `json:"stars"`
		Mutation string `json:"mutation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	card, err := h.engine.GiveCard(r.Context(), r.Header.Get(actorHeader), userID, req.Player, req.Stars, req.Mutation)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, card)
}

// WipeUser deletes a user record entirely.
func (h *AdminHandler) WipeUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := h.engine.WipeUser(r.Context(), r.Header.Get(actorHeader), userID); err != nil {
		response.EngineError(w, err)
		return
	}
	response.NoContent(w)
}

// StoreStats returns aggregate statistics over all user records.
func (h *AdminHandler) StoreStats(w http.ResponseWriter, r *http.Request) {
	if err := h.requireOwner(r); err != nil {
		response.EngineError(w, err)
		return
	}
	stats, err := storage.ComputeStats(r.Context(), h.users)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, stats)
}

// ExportBackup streams a backup of all user records, optionally
// encrypted with the password from the request header.
func (h *AdminHandler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.requireOwner(r); err != nil {
		response.EngineError(w, err)
		return
	}
	password := r.Header.Get("X-Backup-Password")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="circlecrates-backup.json"`)
	if err := storage.ExportBackup(r.Context(), h.users, w, password); err != nil {
		response.InternalError(w, err)
	}
}

// ImportBackup replaces all user records from an uploaded backup.
func (h *AdminHandler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	if err := h.requireOwner(r); err != nil {
		response.EngineError(w, err)
		return
	}
	password := r.Header.Get("X-Backup-Password")
	count, err := storage.ImportBackup(r.Context(), h.db, r.Body, password)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	response.Success(w, map[string]int{"users_restored": count})
}

func (h *AdminHandler) requireOwner(r *http.Request) error {
	return h.engine.AuthorizeOwner(r.Header.Get(actorHeader))
}
