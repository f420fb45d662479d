package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	router "github.com/openhuddle/huddle/internal/adapters/http"
	signaladapter "github.com/openhuddle/huddle/internal/adapters/signal"
	"github.com/openhuddle/huddle/internal/app"
	"github.com/openhuddle/huddle/internal/config"
	"github.com/openhuddle/huddle/internal/core"
	"github.com/openhuddle/huddle/internal/observability"
	"github.com/openhuddle/huddle/internal/storage"
	"github.com/openhuddle/huddle/internal/summarize"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	observability.InitLogger("huddle", "dev")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("huddle", cfg.Mode)
	observability.RegisterMetrics()

	reg := core.NewRegistry()
	arb := core.NewRecorderArbiter(reg)
	sigRouter := app.NewSignalingRouter(reg, arb)
	ctl := signaladapter.NewController(cfg, reg, arb, sigRouter)

	var store *storage.TranscriptStore
	if cfg.DatabaseURL != "" {
		store, err = storage.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open transcript store")
		}
	} else {
		log.Warn().Msg("database_url not set, transcript endpoints disabled")
	}

	provider, err := summarize.FromConfig(cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure summarization provider")
	}
	if provider == nil {
		log.Warn().Msg("llm.provider not set, summaries disabled")
	} else {
		log.Info().Str("provider", provider.Name()).Msg("summarization provider ready")
	}

	r := router.SetupRouter(ctx, cfg, ctl, store, provider)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("huddle signaling hub started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
