package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgeter/internal/storage"
	"budgeter/internal/store/files"
)

// DefaultDataDirectory is where the files backend lives when none is configured.
const DefaultDataDirectory = "pages"

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case FilesBackend:
		return f.createFilesBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{Store: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createFilesBackend(ctx context.Context, config Config) (*BackendResult, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = DefaultDataDirectory
	}
	s := files.New(dir)

	f.logger.InfoContext(ctx, "Initialized files backend", "data_directory", dir)

	return &BackendResult{Store: s, Cleanup: s.Close}, nil
}
