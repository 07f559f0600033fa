package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
)

// LeaderboardHandler serves cached leaderboard lookups.
type LeaderboardHandler struct {
	engine *engine.Engine
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(e *engine.Engine) *LeaderboardHandler {
	return &LeaderboardHandler{engine: e}
}

// Search resolves a rank or username query to a player snapshot.
func (h *LeaderboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}
	player, err := h.engine.SearchPlayer(r.Context(), query)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, player)
}

// Top returns a slice of the cached leaderboard.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			response.BadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	players := h.engine.Leaderboard().Snapshot()
	if len(players) > limit {
		players = players[:limit]
	}
	builtAt, ok := h.engine.Leaderboard().BuiltAt()
	payload := map[string]interface{}{
		"players": players,
	}
	if ok {
		payload["built_at"] = builtAt.Unix()
	}
	response.Success(w, payload)
}
