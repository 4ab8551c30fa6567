package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"veostudio/internal/adapter/repo"
	"veostudio/internal/domain"
	"veostudio/internal/http/handlers"
	"veostudio/internal/http/httpapi"
	"veostudio/internal/infra"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/metrics"
	"veostudio/internal/providers/genai"
	"veostudio/internal/providers/video"
	"veostudio/internal/storage"
	"veostudio/internal/workflow"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := infra.LoadModelCatalog(cfg.ModelCatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load model catalog")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc, err := newVideoService(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure video service")
	}

	// Journal hanya aktif jika DATABASE_URL diisi
	var journal domain.GenerationJournal
	if cfg.JournalEnabled() {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		pg := repo.NewGenerationJournal(infra.NewSQLRunner(pool, logger))
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare generation journal")
		}
		journal = pg
	}

	store := storage.NewMemoryStore()
	orchOpts := []workflow.Option{
		workflow.WithCatalog(catalog),
		workflow.WithMetrics(m),
		workflow.WithLogger(logger.With().Str("component", "workflow").Logger()),
	}
	if journal != nil {
		orchOpts = append(orchOpts, workflow.WithJournal(journal))
	}
	orch := workflow.NewOrchestrator(svc, store, credentials.NewHolder(), workflow.Config{
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
		JobTimeout:      cfg.JobTimeout,
		SettleDelay:     cfg.SettleDelay,
	}, orchOpts...)

	app := &handlers.App{
		Workflow:  orch,
		Assets:    store,
		Catalog:   catalog,
		Journal:   journal,
		Logger:    logger,
		Synthetic: cfg.GeminiSynthetic,
	}
	router := httpapi.NewRouter(app, httpapi.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:         logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Bool("synthetic", cfg.GeminiSynthetic).Msg("API listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := orch.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to stop workflow")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

func newVideoService(cfg *infra.Config, logger *infra.Logger) (video.Service, error) {
	if cfg.GeminiSynthetic {
		logger.Warn().Msg("GEMINI_SYNTHETIC enabled: videos are placeholders")
		return video.NewSynthetic(video.WithSyntheticLogger(logger.With().Str("component", "synthetic").Logger())), nil
	}
	client, err := genai.NewClient(genai.Options{
		BaseURL:         cfg.GeminiBaseURL,
		ValidationModel: cfg.GeminiValidationModel,
		HTTPClient:      &http.Client{Timeout: cfg.GeminiRequestTimeout},
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	return video.NewGemini(client), nil
}
