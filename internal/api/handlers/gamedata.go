package handlers

import (
	"net/http"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
)

// GamedataHandler exposes the static game tables.
type GamedataHandler struct {
	engine *engine.Engine
}

// NewGamedataHandler creates a new GamedataHandler.
func NewGamedataHandler(e *engine.Engine) *GamedataHandler {
	return &GamedataHandler{engine: e}
}

// Mutations returns the mutation table.
func (h *GamedataHandler) Mutations(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.engine.Registry().Mutations())
}

// Flashbacks returns the flashback roster.
func (h *GamedataHandler) Flashbacks(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.engine.Registry().Flashbacks())
}

// Achievements returns the achievement catalog.
func (h *GamedataHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.engine.Registry().Achievements())
}
