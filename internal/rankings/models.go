package rankings

import (
	"fmt"

	"circlecrates/internal/models"
)

// rankingsPage is one page of the performance rankings listing,
// ordered by global rank ascending.
type rankingsPage struct {
	Page     int            `json:"page"`
	Total    int            `json:"total"`
	HasMore  bool           `json:"has_more"`
	Rankings []rankingEntry `json:"rankings"`
}

// rankingEntry is a single leaderboard row as the source returns it.
type rankingEntry struct {
	GlobalRank int         `json:"global_rank"`
	PP         float64     `json:"pp"`
	Accuracy   float64     `json:"hit_accuracy"`
	PlayCount  int         `json:"play_count"`
	User       rankingUser `json:"user"`
}

type rankingUser struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	CountryCode string  `json:"country_code"`
	AvatarURL   string  `json:"avatar_url"`
	Level       float64 `json:"level"`
}

// toPlayer converts a source row into a frozen Player snapshot.
func (e rankingEntry) toPlayer() models.Player {
	return models.Player{
		UserID:         e.User.ID,
		Username:       e.User.Username,
		Rank:           e.GlobalRank,
		PP:             e.PP,
		Accuracy:       e.Accuracy,
		PlayCount:      e.PlayCount,
		Country:        e.User.CountryCode,
		Level:          e.User.Level,
		ProfilePicture: e.User.AvatarURL,
	}
}

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// APIError represents a structured error response from the source.
type APIError struct {
	Status  int    `json:"status"`
	Details string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rankings API error (status %d): %s", e.Status, e.Details)
}
