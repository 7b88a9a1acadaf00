package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/xaenox/problem-notes/internal/classifier"
	"github.com/xaenox/problem-notes/internal/console"
	"github.com/xaenox/problem-notes/internal/storage"
	"github.com/xaenox/problem-notes/internal/store"
	"github.com/xaenox/problem-notes/pkg/config"
)

func main() {
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	configPath, _ := flags.GetString("config")

	// Load configuration
	cfg, err := config.LoadConfig(configPath, flags)
	if err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", configPath))
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	// Initialize storage
	backend, err := storage.New(ctx, storage.Config{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
		Database: storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		},
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
	}
	defer backend.Close()

	// Restore the workspace
	workspace := store.Open(ctx, backend,
		store.WithLogger(logger),
		store.WithKey(cfg.Storage.Key),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "notes> ",
		HistoryFile:       historyPath(),
		HistorySearchFold: true,
	})
	if err != nil {
		logger.Fatal("Failed to open terminal", zap.Error(err))
	}
	defer rl.Close()

	c := console.New(workspace,
		classifier.NewHashtagClassifier(cfg.Classifier.MaxTags),
		console.Settings{
			DragInterval: cfg.Drag.FlushInterval,
			ExportDir:    cfg.Export.Dir,
		},
		rl.Stdout(),
		logger,
	)

	if err := c.Run(ctx, rl); err != nil {
		logger.Error("Console stopped", zap.Error(err))
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".problem-notes-history")
}
