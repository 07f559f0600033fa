package handlers

import (
	"net/http"
	"time"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
	"circlecrates/internal/version"
)

// SystemHandler serves status and version requests.
type SystemHandler struct {
	engine  *engine.Engine
	started time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(e *engine.Engine) *SystemHandler {
	return &SystemHandler{engine: e, started: time.Now()}
}

// GetStatus reports server health and leaderboard cache state.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	board := h.engine.Leaderboard()
	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"cached_players": len(board.Snapshot()),
	}
	if builtAt, ok := board.BuiltAt(); ok {
		status["leaderboard_built_at"] = builtAt.Unix()
		status["leaderboard_age_seconds"] = int64(time.Since(builtAt).Seconds())
	}
	response.Success(w, status)
}

// GetVersion reports build information.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	response.Success(w, version.Get())
}
