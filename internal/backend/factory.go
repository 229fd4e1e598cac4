package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	applog "finanzas/internal/log"
	"finanzas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(applog.FieldComponent, applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, config.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logSQLiteState(ctx, repo, config.SQLiteDBPath)

	return &BackendResult{
		Storage: repo,
		Cleanup: repo.Close,
	}, nil
}

// logSQLiteState reports schema version, last write and other ledgers
// sharing the database. Failures here are only logged.
func (f *DefaultFactory) logSQLiteState(ctx context.Context, repo *storage.SQLiteRepository, dbPath string) {
	args := []any{applog.FieldPath, dbPath, applog.FieldKey, repo.Key()}

	if version, err := storage.SchemaVersion(dbPath); err != nil {
		f.logger.WarnContext(ctx, "Could not read schema version", applog.FieldError, err.Error())
	} else {
		args = append(args, "schema_version", version)
	}
	if updated, err := repo.UpdatedAt(ctx); err != nil {
		f.logger.WarnContext(ctx, "Could not read last write time", applog.FieldError, err.Error())
	} else if !updated.IsZero() {
		args = append(args, "updated_at", updated.Format(time.RFC3339))
	}
	if keys, err := repo.Keys(ctx); err != nil {
		f.logger.WarnContext(ctx, "Could not list stored keys", applog.FieldError, err.Error())
	} else {
		args = append(args, "stored_keys", len(keys))
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", args...)
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	fs, err := storage.NewFileStore(config.DataFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend", applog.FieldPath, fs.Path())

	return &BackendResult{Storage: fs}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.WarnContext(ctx, "Initialized memory backend, data is lost on exit")

	return &BackendResult{Storage: storage.NewMemoryStore(nil)}, nil
}
