// Package cli provides the initialization and rendering helpers used by
// cmd/finanzas.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/backend"
	"finanzas/internal/config"
	"finanzas/internal/ledger"
	applog "finanzas/internal/log"
	"finanzas/internal/sinks"
	"finanzas/internal/sinks/google"
)

// SetupLogger initializes structured logging at the given level on w and
// installs it as the default logger.
func SetupLogger(level string, w io.Writer) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(level),
		Component: applog.ComponentCLI,
		Output:    w,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig(logger *applog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldErrorType, applog.ErrorTypeConfiguration,
			applog.FieldError, err.Error())
		return nil, err
	}
	return cfg, nil
}

// InitStore opens the configured storage backend and hydrates the ledger
// from it. The returned cleanup releases the backend.
func InitStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*ledger.Store, backend.CleanupFunc, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone: %w", err)
	}

	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := res.Cleanup
	if cleanup == nil {
		cleanup = func() error { return nil }
	}

	store := ledger.Open(ctx, res.Storage,
		ledger.WithLocation(loc),
		ledger.WithLogger(logger.WithComponent(applog.ComponentLedger)))
	if err := store.LoadErr(); err != nil {
		logger.WarnContext(ctx, "Stored data could not be read, starting empty",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldBackend, bcfg.Type.String(),
			applog.FieldErrorType, applog.ErrorTypeStorage,
			applog.FieldError, err.Error())
	}
	return store, cleanup, nil
}

// InitSinks builds the export sinks selected by the configuration. Remote
// sinks that cannot be reached are skipped with a warning so local exports
// still work.
func InitSinks(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *applog.Logger) []sinks.Sink {
	var out []sinks.Sink
	for _, format := range cfg.ExportFormats {
		switch format {
		case config.FormatText:
			out = append(out, sinks.NewFileSink(cfg.ExportDir))
		case config.FormatPDF:
			out = append(out, sinks.NewPDFSink(cfg.ExportDir))
		case config.FormatStdout:
			out = append(out, sinks.NewWriterSink("stdout", stdout))
		}
	}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without it",
				applog.FieldErrorType, applog.ErrorTypeNetwork,
				applog.FieldError, err.Error())
		} else {
			logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			out = append(out, client)
		}
	}

	if cfg.SheetsEnabled() {
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize Google Sheets client, continuing without it",
				applog.FieldErrorType, applog.ErrorTypeConfiguration,
				applog.FieldError, err.Error())
		} else {
			out = append(out, client)
		}
	}
	return out
}

// InterruptContext returns a context cancelled on SIGINT or SIGTERM.
func InterruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
