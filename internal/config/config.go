package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Bind        string `toml:"bind"`
	RelayURL    string `toml:"relay_url"`
	DataDir     string `toml:"data_dir"`
	Model       string `toml:"model"`
	MaxSessions int    `toml:"max_sessions"`
}

func Default() Config {
	return Config{
		Bind:        ":8080",
		RelayURL:    "http://127.0.0.1:8080/api/chat/stream",
		DataDir:     defaultDataDir(),
		Model:       "gemini-2.5-flash-lite",
		MaxSessions: 50,
	}
}

// LoadOrCreate reads the config file at path, writing the defaults there
// first if no file exists yet.
func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.DataDir = expandPath(config.DataDir)
	config.RelayURL = strings.TrimSpace(config.RelayURL)
	config.Bind = strings.TrimSpace(config.Bind)

	if config.RelayURL == "" {
		return config, errors.New("relay_url is required")
	}

	if config.Bind == "" {
		config.Bind = ":8080"
	}

	if config.MaxSessions <= 0 {
		config.MaxSessions = 50
	}

	return config, nil
}

// LoadEnv loads a .env file when present; missing files are fine since
// the variables may come from the environment directly.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".techcorp-chat"
	}

	return filepath.Join(homeDir, ".techcorp-chat")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		if homeDir != "" {
			trimmed := strings.TrimPrefix(path, "~")
			trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))

			return filepath.Join(homeDir, trimmed)
		}
	}

	return path
}
