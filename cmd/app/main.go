// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"legal-ai-relay/internal/config"
	"legal-ai-relay/internal/domain/ports/adapter"
	aiAdapters "legal-ai-relay/internal/infra/adapters/ai"
	"legal-ai-relay/internal/infra/adapters/bitrix"
	"legal-ai-relay/internal/infra/api"
	"legal-ai-relay/internal/infra/fetch"
	"legal-ai-relay/internal/infra/i18n"
	"legal-ai-relay/internal/infra/logging"
	"legal-ai-relay/internal/infra/metrics"
	"legal-ai-relay/internal/usecase"
)

// set with -ldflags "-X main.version=... -X main.commit=..."
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	envPath := flag.String("env", ".env", "path to dotenv file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted URLs)")
	flag.Parse()

	cfg, err := config.LoadFromEnvironment(*envPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *devMode {
		cfg.Runtime.Dev = true
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.AI.FailurePolicy)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Lang)
	if err != nil {
		logger.Fatal().Err(err).Str("lang", cfg.Lang).Msg("locales")
	}

	// ---- AI Adapter ----
	ai, err := newAIAdapter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.AI.Provider).Msg("ai adapter")
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)
	logger.Info().
		Str("provider", ai.Provider()).
		Str("model", ai.Model()).
		Str("failure_policy", cfg.AI.FailurePolicy).
		Int("concurrent_limit", cfg.AI.ConcurrentLimit).
		Msg("AI adapter ready")

	// ---- Upstream clients ----
	fetcher := fetch.NewHTTPDocumentFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes, logger, cfg.Runtime.Dev)
	chat, err := bitrix.NewClient(cfg.Bitrix.URL, cfg.Bitrix.Timeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("bitrix client")
	}

	// ---- Use case ----
	if cfg.AllowedChatIDs.Len() == 0 {
		logger.Warn().Msg("ALLOWED_CHAT_IDS is empty; every chat is accepted")
	}
	legalUC := usecase.NewLegalUseCase(fetcher, ai, tr, cfg.AllowedChatIDs, cfg.AI.FailurePolicy, cfg.Runtime.Dev, logger)

	// ---- HTTP server ----
	srv := api.NewServer(legalUC, chat, tr, cfg.HTTP.RequestBodyLimitBytes, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// a request waits for fetch + completion + delivery
		WriteTimeout: cfg.Fetch.Timeout + cfg.AI.Timeout + 2*cfg.Bitrix.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigc:
		logger.Info().Str("signal", s.String()).Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("bye")
}

func newAIAdapter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		return aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiBaseURL, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	case config.ProviderNoop:
		return aiAdapters.NewNoopAIAdapter(logger), nil
	default:
		return aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.OpenAIBaseURL, cfg.AI.Timeout)
	}
}
