package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/techcorp/website/internal/config"
	"github.com/techcorp/website/internal/relay"
	"github.com/techcorp/website/internal/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var (
		configPathFlag = flag.String("config", "", "path to config file (default ~/.techcorp-chat/config.toml)")
		bindFlag       = flag.String("bind", "", "HTTP bind address")
		modelFlag      = flag.String("model", "", "Gemini model to relay to")
	)
	flag.Parse()

	configPath := *configPathFlag
	if configPath == "" {
		configPath = filepath.Join(config.Default().DataDir, "config.toml")
	}

	serverConfig, err := config.LoadOrCreate(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setIfNotEmpty := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	setIfNotEmpty(&serverConfig.Bind, *bindFlag)
	setIfNotEmpty(&serverConfig.Model, *modelFlag)

	config.LoadEnv(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var upstream relay.Upstream
	if apiKey := config.GeminiAPIKey(); apiKey != "" {
		gemini, err := relay.NewGeminiUpstream(ctx, apiKey, serverConfig.Model)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()

		upstream = gemini
	} else {
		logger.Error("GEMINI_API_KEY is not set, chat requests will fail")
	}

	site, err := web.NewSite(logger)
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodPost, "/api/chat/stream", relay.NewHandler(upstream, logger))
	site.Register(router)

	// No WriteTimeout: chat responses stream over SSE for as long as the
	// model keeps producing tokens.
	server := &http.Server{
		Addr:        serverConfig.Bind,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "address", serverConfig.Bind, "model", serverConfig.Model)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
