// Package config loads and persists the engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// App contains general settings.
	App AppConfig `toml:"app"`

	// Rankings configures the external leaderboard source.
	Rankings RankingsConfig `toml:"rankings"`

	// Game contains the gacha engine tunables.
	Game GameConfig `toml:"game"`

	// Daily configures the daily reward distribution.
	Daily DailyConfig `toml:"daily"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DatabasePath string `toml:"database_path"` // SQLite path; empty = default under home dir
	Port         int    `toml:"port"`          // API server port
	GamedataFile string `toml:"gamedata_file"` // Optional table override file (hot reloaded)
	OwnerID      string `toml:"owner_id"`      // User allowed to run administrative operations
	DebugMode    bool   `toml:"debug_mode"`    // Enable debug logging
}

// RankingsConfig contains leaderboard source settings.
type RankingsConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	PageSize        int    `toml:"page_size"`        // Entries per rankings page
	LeaderboardSize int    `toml:"leaderboard_size"` // Ranks to cache (1..N)
	CacheTTL        string `toml:"cache_ttl"`        // Staleness budget (e.g. "30m")
	FetchRetries    int    `toml:"fetch_retries"`    // Rebuild attempts per refresh
}

// GameConfig contains the gacha engine tunables.
type GameConfig struct {
	CooldownSeconds      int     `toml:"cooldown_seconds"`      // Min interval between opens per user
	BulkOpenMax          int     `toml:"bulk_open_max"`         // Max crates per open call
	SimulationMax        int     `toml:"simulation_max"`        // Max trials per odds simulation
	StartingCoins        int64   `toml:"starting_coins"`        // Coins for new users
	ConfirmationsEnabled bool    `toml:"confirmations_enabled"` // Default for new users
	MutationChance       float64 `toml:"mutation_chance"`       // Global mutation probability cap
	PlayerRerolls        int     `toml:"player_rerolls"`        // Re-rolls when a rank resolves to nobody
}

// DailyConfig controls the daily reward distribution.
type DailyConfig struct {
	BaseCoins       int64  `toml:"base_coins"`        // Coins for any claim
	StreakBonus     int64  `toml:"streak_bonus"`      // Extra coins per streak day
	StreakBonusCap  int    `toml:"streak_bonus_cap"`  // Streak days counted for the bonus
	CrateKey        string `toml:"crate_key"`         // Crate granted every claim
	BonusCrateEvery int    `toml:"bonus_crate_every"` // Streak interval for the bonus crate
	BonusCrateKey   string `toml:"bonus_crate_key"`   // Crate granted on the interval
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Port: 8080,
		},
		Rankings: RankingsConfig{
			BaseURL:         "https://rankings.circleclash.dev/api/v1",
			PageSize:        50,
			LeaderboardSize: 10000,
			CacheTTL:        "30m",
			FetchRetries:    3,
		},
		Game: GameConfig{
			CooldownSeconds:      5,
			BulkOpenMax:          10,
			SimulationMax:        100_000,
			StartingCoins:        2000,
			ConfirmationsEnabled: true,
			MutationChance:       0.08,
			PlayerRerolls:        3,
		},
		Daily: DailyConfig{
			BaseCoins:       1000,
			StreakBonus:     250,
			StreakBonusCap:  14,
			CrateKey:        "common",
			BonusCrateEvery: 7,
			BonusCrateKey:   "epic",
		},
	}
}

// DefaultConfigPath returns the path to the configuration file,
// creating the parent directory if needed.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".circlecrates")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from the given path. Returns the
// default config if the file doesn't exist.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Rankings.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Rankings.CacheTTL, err)
	}
	if c.Rankings.PageSize <= 0 {
		return fmt.Errorf("page size must be positive: %d", c.Rankings.PageSize)
	}
	if c.Rankings.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard size must be positive: %d", c.Rankings.LeaderboardSize)
	}
	if c.Rankings.FetchRetries < 1 {
		return fmt.Errorf("fetch retries must be at least 1: %d", c.Rankings.FetchRetries)
	}
	if c.Game.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown cannot be negative: %d", c.Game.CooldownSeconds)
	}
	if c.Game.BulkOpenMax < 1 {
		return fmt.Errorf("bulk open max must be at least 1: %d", c.Game.BulkOpenMax)
	}
	if c.Game.MutationChance < 0 || c.Game.MutationChance > 1 {
		return fmt.Errorf("mutation chance outside [0,1]: %v", c.Game.MutationChance)
	}
	if c.Game.PlayerRerolls < 0 {
		return fmt.Errorf("player rerolls cannot be negative: %d", c.Game.PlayerRerolls)
	}
	return nil
}

// GetCacheTTL returns the leaderboard cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Rankings.CacheTTL)
}
