package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/hostkit/checkin-bridge/internal/biz"
	"github.com/hostkit/checkin-bridge/internal/biz/usecase"
	"github.com/hostkit/checkin-bridge/internal/conf"
	"github.com/hostkit/checkin-bridge/internal/data"
	"github.com/hostkit/checkin-bridge/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()

	log := newLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	repos, err := data.NewRepositories(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create repositories")
	}
	defer repos.Close()

	log.Info().
		Str("db", cfg.Store.DBPath).
		Int64("apartment_id", cfg.Smoobu.ApartmentID).
		Msg("request memory opened")

	ucs := &biz.Usecases{
		Pipeline: usecase.NewPipelineUsecase(
			repos.Memory, repos.Classifier, repos.Responder, repos.Notifier,
			cfg.ConfidenceThreshold, log),
		Reconcile: usecase.NewReconcileUsecase(
			repos.Memory, repos.Cleaner, repos.Responder, repos.Notifier,
			cfg.ConfidenceThreshold, log),
		Review: usecase.NewReviewUsecase(repos.Memory, log),
	}

	poller := service.NewPoller(ucs.Pipeline, ucs.Reconcile, repos.Gateway, repos.ResCache, cfg, log)
	poller.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	poller.Stop()
}

func newLogger(cfg *conf.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
