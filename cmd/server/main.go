// Command server starts the resume ranking HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/ai/gemini"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/ai/openai"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/ai/stub"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/ai/tokencount"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/fetch/httpfetch"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/httpserver"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/observability"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/report"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/adapter/textextractor/pdfx"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/app"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/config"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/domain"
	"github.com/iamcalledayush/resume-scorer-resupply/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()

	prompts, err := config.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		slog.Error("failed to load prompt overrides", slog.Any("error", err))
		os.Exit(1)
	}

	oracle, err := buildOracle(ctx, cfg)
	if err != nil {
		slog.Error("oracle client init failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("oracle client initialized", slog.String("provider", cfg.OracleProvider))

	pipeline := usecase.NewPipeline(oracle, pdfx.New(), tokencount.NewCounter(cfg.OpenAIModel), usecase.Options{
		MaxComparative:      cfg.MaxComparative,
		Concurrency:         cfg.PipelineConcurrency,
		MaxTokens:           cfg.OracleMaxTokens,
		RerankTokenBudget:   cfg.RerankTokenBudget,
		SurfaceRawResponses: cfg.SurfaceRawResponses,
		EligibilityRule:     prompts.EligibilityRule,
		ScoringGuidance:     prompts.ScoringGuidance,
		RerankGuidance:      prompts.RerankGuidance,
	})

	fetcher := httpfetch.New(cfg.FetchTimeout, cfg.FetchMaxRetries, cfg.FetchInitialDelay)
	srv := httpserver.NewServer(cfg, pipeline, fetcher, report.NewMarkdown())
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}

func buildOracle(ctx context.Context, cfg config.Config) (domain.OracleClient, error) {
	switch cfg.OracleProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		return openai.New(cfg), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.OracleTimeout)
	case "stub":
		return stub.New(), nil
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.OracleProvider)
	}
}
