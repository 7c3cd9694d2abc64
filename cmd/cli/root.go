package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/techcorp/website/internal/config"
	"github.com/techcorp/website/internal/session"
)

func execute() {
	rootCmd := &cobra.Command{
		Use:   "techcorp-chat [prompt]",
		Short: "TechCorp support chat CLI",
		Args:  cobra.ArbitraryArgs,
		RunE:  runChat,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")
	rootCmd.PersistentFlags().String("session", "", "session id to reuse")

	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newPrefsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	configPath := path

	if configPath == "" {
		configPath = filepath.Join(config.Default().DataDir, "config.toml")
	}

	return config.LoadOrCreate(configPath)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// openStore loads the persisted chat state, trimming stored sessions to
// the configured cap first.
func openStore(cmd *cobra.Command) (*session.Store, config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger()
	storage := &session.FileStorage{Path: filepath.Join(cfg.DataDir, "chat.json")}

	if err := storage.Cleanup(cfg.MaxSessions); err != nil {
		logger.Warn("failed to trim stored sessions", "error", err)
	}

	store := session.NewStore(storage, logger)
	store.Load()

	return store, cfg, nil
}
