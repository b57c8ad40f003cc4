package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"voicenote-service/internal/clock"
	"voicenote-service/internal/config"
	"voicenote-service/internal/export"
	"voicenote-service/internal/gemini"
	"voicenote-service/internal/llm"
	"voicenote-service/internal/models"
	"voicenote-service/internal/notify"
	"voicenote-service/internal/recorder"
	"voicenote-service/internal/repository"
	"voicenote-service/internal/service"

	"go.uber.org/zap"
)

// app wires the services for one process
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	clock    clock.Clock
	location *time.Location
	locale   models.Locale
	exporter export.Exporter

	store    repository.Store
	notes    *service.NoteService
	sessions *service.SessionService
	notifier *notify.Telegram

	// set only when the AI gateway is needed
	gateway  *llm.Gateway
	reports  *service.ReportService
	recorder *recorder.Recorder
}

func newLogger(format string) (*zap.Logger, error) {
	if format == "json" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.LoadConfig(path)
}

// loadApp builds the app. withGateway also sets up the AI provider, which
// needs credentials.
func loadApp(ctx context.Context, configPath string, withGateway bool) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		clock:    clock.System{},
		location: loc,
		locale:   models.ParseLocale(cfg.Locale),
	}
	a.exporter = export.Exporter{Locale: a.locale, Location: loc}

	a.store, err = repository.Open(ctx, cfg.Storage.Driver, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if cfg.Notify.Telegram.Enabled {
		a.notifier, err = notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, a.locale, logger)
		if err != nil {
			logger.Warn("Telegram notifications unavailable", zap.Error(err))
		}
	}

	var observers []service.NoteObserver
	if a.notifier != nil {
		observers = append(observers, a.notifier)
	}
	a.notes = service.NewNoteService(a.store, logger, observers...)
	if err := a.notes.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.sessions, err = service.NewSessionService(a.store, service.SessionConfig{
		Secret:           cfg.Session.JWTSecret,
		TokenTTL:         cfg.Session.TokenTTL,
		RevokedCacheSize: cfg.Session.RevokedCacheSize,
		Clock:            a.clock,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if err := a.sessions.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if withGateway {
		provider, err := newProvider(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.gateway = llm.NewGateway(provider, llm.GatewayConfig{
			Timeout:  cfg.LLM.RequestTimeout,
			Locale:   a.locale,
			Location: loc,
			Clock:    a.clock,
		}, logger)
		a.reports = service.NewReportService(a.gateway, a.notes, a.clock, loc, a.locale, logger)
		a.recorder = recorder.New(a.gateway, a.notes, recorder.Config{
			MaxDuration: cfg.Recorder.MaxDuration,
			Locale:      a.locale,
		}, logger)
	}

	return a, nil
}

// newProvider prefers the configured provider list and falls back to a single Gemini client
func newProvider(cfg *config.Config, logger *zap.Logger) (llm.Provider, error) {
	if len(cfg.Providers) > 0 {
		multiClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
			Providers:   cfg.Providers,
			MaxFailures: cfg.MaxFailuresBeforeSwitch,
		}, logger)
		if err == nil {
			logger.Info("Multi-provider client initialized",
				zap.Int("provider_count", len(cfg.Providers)))
			return multiClient, nil
		}
		logger.Warn("Failed to initialize multi-provider client, falling back to single provider",
			zap.Error(err))
	}

	if cfg.Gemini.APIKey == "" || cfg.Gemini.APIKey == "YOUR_API_KEY_HERE" {
		return nil, errors.New("gemini API key not configured: set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	geminiClient, err := gemini.NewClient(gemini.Config{
		APIKey:    cfg.Gemini.APIKey,
		ModelName: cfg.Gemini.ModelName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	logger.Info("Single provider client initialized with rate limiting")
	return llm.NewRateLimitedProvider(geminiClient, cfg.LLM.RequestsPerMinute, logger), nil
}

// Close releases the store and the provider
func (a *app) Close() {
	if a.gateway != nil {
		if err := a.gateway.Close(); err != nil {
			a.logger.Warn("Failed to close AI provider", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
