// Package handlers maps HTTP requests onto engine operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"circlecrates/internal/api/response"
	"circlecrates/internal/engine"
	"circlecrates/internal/models"
)

// UserHandler serves user profile, collection and settings requests.
type UserHandler struct {
	engine *engine.Engine
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(e *engine.Engine) *UserHandler {
	return &UserHandler{engine: e}
}

// profileView is the user record without the full card map.
type profileView struct {
	UserID               string                  `json:"user_id"`
	Currency             int64                   `json:"currency"`
	CardCount            int                     `json:"card_count"`
	CollectionValue      int64                   `json:"collection_value"`
	Crates               map[string]int          `json:"crates"`
	TotalOpens           int64                   `json:"total_opens"`
	DailyStreak          int                     `json:"daily_streak"`
	Achievements         map[string]int64        `json:"achievements"`
	Stats                models.AchievementStats `json:"stats"`
	ConfirmationsEnabled bool                    `json:"confirmations_enabled"`
	CreatedAt            int64                   `json:"created_at"`
}

// GetProfile returns a user's profile summary.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.engine.User(r.Context(), userID)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, profileView{
		UserID:               user.UserID,
		Currency:             user.Currency,
		CardCount:            len(user.Cards),
		CollectionValue:      user.CollectionValue(),
		Crates:               user.Crates,
		TotalOpens:           user.TotalOpens,
		DailyStreak:          user.DailyCount,
		Achievements:         user.Achievements,
		Stats:                user.Stats,
		ConfirmationsEnabled: user.ConfirmationsEnabled,
		CreatedAt:            user.CreatedAt,
	})
}

// GetCards returns the user's collection sorted by value, most
// valuable first, favorites pinned on top.
func (h *UserHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.engine.User(r.Context(), userID)
	if err != nil {
		response.EngineError(w, err)
		return
	}

	cards := make([]*models.Card, 0, len(user.Cards))
	for _, c := range user.Cards {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool {
		fi, fj := user.Favorites[cards[i].CardID], user.Favorites[cards[j].CardID]
		if fi != fj {
			return fi
		}
		if cards[i].Price != cards[j].Price {
			return cards[i].Price > cards[j].Price
		}
		return cards[i].CardID < cards[j].CardID
	})
	response.Success(w, cards)
}

// GetCard returns a single owned card.
func (h *UserHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cardID := chi.URLParam(r, "cardID")
	user, err := h.engine.User(r.Context(), userID)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	card, ok := user.Cards[cardID]
	if !ok {
		response.NotFound(w, errors.New("card not owned"))
		return
	}
	response.Success(w, card)
}

// ToggleFavorite flips the favorite flag on an owned card.
func (h *UserHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cardID := chi.URLParam(r, "cardID")
	favored, err := h.engine.ToggleFavorite(r.Context(), userID, cardID)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, map[string]bool{"favorite": favored})
}

// UpdateSettings adjusts per-user toggles.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		ConfirmationsEnabled *bool `json:"confirmations_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.ConfirmationsEnabled == nil {
		response.BadRequest(w, errors.New("no settings in request"))
		return
	}
	if err := h.engine.SetConfirmations(r.Context(), userID, *req.ConfirmationsEnabled); err != nil {
		response.EngineError(w, err)
		return
	}
	response.NoContent(w)
}

// ClaimDaily grants the daily reward.
func (h *UserHandler) ClaimDaily(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	result, err := h.engine.ClaimDaily(r.Context(), userID)
	if err != nil {
		response.EngineError(w, err)
		return
	}
	response.Success(w, result)
}
