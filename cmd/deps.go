package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/spigell/resumebek/internal/ai"
	"github.com/spigell/resumebek/internal/ai/gemini"
	"github.com/spigell/resumebek/internal/followup"
	"github.com/spigell/resumebek/internal/metrics"
	"github.com/spigell/resumebek/internal/notify"
	"github.com/spigell/resumebek/internal/secrets"
)

func newAnalyzer(ctx context.Context, cfg AIConfig, log *zap.Logger) (ai.Analyzer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator, log.With(zap.String("component", "analyzer")), gemini.AnalyzerOptions{
		MaxInputChars:     cfg.Gemini.MaxInputChars,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
		MaxLogLength:      cfg.Gemini.MaxLogLength,
	})
}

func newMetricsSink(cfg MetricsConfig, log *zap.Logger) (*metrics.FileSink, error) {
	return metrics.NewFileSink(afero.NewOsFs(), cfg.Dir, log.With(zap.String("component", "metrics")))
}

func newFollowUpStore(cfg FollowUpConfig) (followup.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return followup.NewSQLiteStore(cfg.Path)
	case "file", "":
		return followup.NewFileStore(afero.NewOsFs(), cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported follow-up store: %s", cfg.Store)
	}
}

func newScheduler(cfg *Config, notifier notify.Notifier, sink metrics.Sink, log *zap.Logger) (*followup.Scheduler, followup.Store, error) {
	store, err := newFollowUpStore(cfg.FollowUp)
	if err != nil {
		return nil, nil, fmt.Errorf("open follow-up store: %w", err)
	}

	scheduler, err := followup.NewScheduler(store, notifier, sink, followup.Options{
		Delay:  cfg.FollowUp.Delay,
		CTA:    cfg.CTA,
		Logger: log.With(zap.String("component", "followup")),
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return scheduler, store, nil
}
