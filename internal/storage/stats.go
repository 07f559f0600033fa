package storage

import "context"

// StoreStats is an aggregate view over every persisted user.
type StoreStats struct {
	Users           int   `json:"users"`
	Cards           int   `json:"cards"`
	TotalCoins      int64 `json:"total_coins"`
	CollectionValue int64 `json:"collection_value"`
	TotalOpens      int64 `json:"total_opens"`
}

// ComputeStats walks the whole store. The store is small enough that a
// full scan per status request is acceptable.
func ComputeStats(ctx context.Context, repo UserRepository) (StoreStats, error) {
	users, err := repo.All(ctx)
	if err != nil {
		return StoreStats{}, err
	}

	var stats StoreStats
	stats.Users = len(users)
	for _, u := range users {
		stats.Cards += len(u.Cards)
		stats.TotalCoins += u.Currency
		stats.CollectionValue += u.CollectionValue()
		stats.TotalOpens += u.TotalOpens
	}
	return stats, nil
}
