package main

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledgerbot/internal/auth"
	"ledgerbot/internal/config"
	"ledgerbot/internal/dialogue"
	"ledgerbot/internal/domain"
	"ledgerbot/internal/extractor"
	"ledgerbot/internal/extractor/deepseek"
	"ledgerbot/internal/extractor/gemini"
	"ledgerbot/internal/extractor/yandexgpt"
	"ledgerbot/internal/metrics"
	"ledgerbot/internal/port"
	"ledgerbot/internal/service"
	"ledgerbot/internal/sheets/google"
	"ledgerbot/internal/sheets/xlsx"
	"ledgerbot/internal/state"
	s3storage "ledgerbot/internal/storage/s3"
	"ledgerbot/internal/telegram"
	"ledgerbot/internal/webhook"
)

func init() {
	extractor.RegisterProvider("deepseek", func(c *config.AIProviderConfig) (port.Completer, error) {
		return deepseek.New(c), nil
	})
	extractor.RegisterProvider("yandexgpt", func(c *config.AIProviderConfig) (port.Completer, error) {
		return yandexgpt.New(c), nil
	})
	extractor.RegisterProvider("gemini", func(c *config.AIProviderConfig) (port.Completer, error) {
		g, err := gemini.New(c)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
}

// app holds everything one bot process needs.
type app struct {
	api        *tgbotapi.BotAPI
	sink       port.RecordSink
	metrics    *metrics.Metrics
	controller *dialogue.Controller
	processor  *webhook.Processor
	closers    []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Warn("app.Close: close failed", zap.Error(err))
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{metrics: metrics.New()}

	api, err := telegram.NewBotAPI(&cfg.Telegram, log)
	if err != nil {
		return nil, err
	}
	a.api = api

	sink, closeSink, err := newSink(ctx, &cfg.Sheets, log)
	if err != nil {
		return nil, err
	}
	a.sink = sink
	a.closers = append(a.closers, closeSink)

	archive, err := newArchive(ctx, &cfg.Export.Archive)
	if err != nil {
		a.Close()
		return nil, err
	}

	gate, err := auth.NewGate(cfg.Auth)
	if err != nil {
		a.Close()
		return nil, err
	}

	completer, err := extractor.NewCompleterChain(&cfg.AI, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	rate := decimal.NewFromFloat(cfg.VAT.Rate)
	adapter := extractor.NewAdapter(completer, extractor.Options{
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		VATRate:     rate,
	}, log)

	finance, err := extractor.FinanceSchema(domain.AICategories)
	if err != nil {
		a.Close()
		return nil, err
	}
	request, err := extractor.RequestSchema()
	if err != nil {
		a.Close()
		return nil, err
	}

	ledger := service.NewLedgerService(sink, service.LedgerConfig{
		Template:     cfg.Sheets.Template,
		RequestSheet: cfg.Sheets.RequestSheet,
	}, a.metrics, log)
	exports := service.NewExportService(sink, archive, service.ExportConfig{
		FileName:      cfg.Export.FileName,
		Bucket:        cfg.Export.Archive.Bucket,
		Prefix:        cfg.Export.Archive.Prefix,
		PresignExpiry: cfg.Export.Archive.PresignExpiry,
	}, a.metrics, log)

	a.controller = dialogue.NewController(
		state.NewStore(),
		gate,
		ledger,
		exports,
		adapter,
		telegram.NewMessenger(api, log),
		dialogue.Config{VATRate: rate, FinanceSchema: finance, RequestSchema: request},
		a.metrics,
		log,
	)
	a.processor = webhook.NewProcessor(a.controller, handleTimeout(cfg), a.metrics, log)

	log.Info("ledgerbot: wired",
		zap.String("sheets", cfg.Sheets.Provider),
		zap.String("archive", cfg.Export.Archive.Provider),
		zap.String("ai", cfg.AI.PrimaryConfig().Provider))
	return a, nil
}

// handleTimeout leaves room for one extraction and a few sheet calls.
func handleTimeout(cfg *config.Config) time.Duration {
	return cfg.AI.Timeout + 30*time.Second
}

func newSink(ctx context.Context, cfg *config.SheetsConfig, log *zap.Logger) (port.RecordSink, func() error, error) {
	switch cfg.Provider {
	case "google":
		s, err := google.NewSink(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case "xlsx":
		s, err := xlsx.OpenSink(cfg.XLSXPath, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown sheets provider %q", domain.ErrConfiguration, cfg.Provider)
	}
}

// newArchive returns nil when exports are not archived.
func newArchive(ctx context.Context, cfg *config.ArchiveConfig) (port.ObjectStorage, error) {
	if cfg.Provider != "s3" {
		return nil, nil
	}
	a, err := s3storage.NewArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return a, nil
}
