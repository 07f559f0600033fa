// Package main runs the circlecrates REST API server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"circlecrates/internal/api"
	"circlecrates/internal/config"
	"circlecrates/internal/engine"
	"circlecrates/internal/gamedata"
	"circlecrates/internal/leaderboard"
	"circlecrates/internal/rankings"
	"circlecrates/internal/storage"
	"circlecrates/internal/version"
)

var (
	configPath = flag.String("config", "", "Config path (default: ~/.circlecrates/config.toml)")
	port       = flag.Int("port", 0, "Override the configured API port")
)

func main() {
	flag.Parse()

	path := *configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			slog.Error("resolve config path", "error", err)
			os.Exit(1)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "path", path, "error", err)
		os.Exit(1)
	}
	// Write the defaults on first run so the file is there to edit.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			slog.Warn("write default config", "path", path, "error", err)
		}
	}
	if *port != 0 {
		cfg.App.Port = *port
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("circlecrates starting", "version", version.Version, "config", path)

	dbPath := cfg.App.DatabasePath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Error("resolve home directory", "error", err)
			os.Exit(1)
		}
		dbPath = filepath.Join(home, ".circlecrates", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.Error("create database directory", "error", err)
		os.Exit(1)
	}

	dbConfig := storage.DefaultConfig(dbPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", "error", err)
		}
	}()
	users := storage.NewUserRepository(db.Conn())

	data, err := gamedata.NewStore(cfg.App.GamedataFile, logger)
	if err != nil {
		logger.Error("load game tables", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.GamedataFile != "" {
		go func() {
			if err := data.Watch(ctx); err != nil {
				logger.Warn("gamedata watch stopped", "error", err)
			}
		}()
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		logger.Error("parse cache ttl", "error", err)
		os.Exit(1)
	}
	client := rankings.NewClient(cfg.Rankings.BaseURL, cfg.Rankings.APIKey, cfg.Rankings.PageSize)
	board := leaderboard.New(client, cfg.Rankings.LeaderboardSize, ttl, logger)

	eng := engine.New(users, board, data, cfg, logger, engine.Options{})

	server := api.NewServer(cfg.App.Port, eng, users, db, logger)
	server.Start()
	logger.Info("API server running", "port", server.Port())

	// Warm the leaderboard in the background so the first open does not
	// pay the full fetch.
	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if _, err := board.EnsureFresh(warmCtx, cfg.Rankings.FetchRetries); err != nil {
			logger.Warn("initial leaderboard fetch failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
}
