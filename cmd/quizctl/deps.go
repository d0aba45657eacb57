package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	pgRepo "healthquiz/internal/infra/adapter/persistence/postgres"
	"healthquiz/internal/infra/db"
	"healthquiz/internal/infra/extractor"
	ingestUC "healthquiz/internal/usecase/ingest"
	"healthquiz/internal/usecase/lifecycle"
)

// deps builds the collaborators each command needs, so tests can swap them.
type deps struct {
	extractor func() (ingestUC.ContentExtractor, error)
	// lifecycle returns the service and a func releasing its resources.
	lifecycle func(ctx context.Context) (*lifecycle.Service, func(), error)
	ingest    func(ctx context.Context) (*ingestUC.Service, func(), error)
}

func defaultDeps() deps {
	return deps{
		extractor: newExtractor,
		lifecycle: func(ctx context.Context) (*lifecycle.Service, func(), error) {
			database, err := openDB(ctx)
			if err != nil {
				return nil, nil, err
			}
			return lifecycle.NewService(pgRepo.NewQuestionRepo(database)), func() { _ = database.Close() }, nil
		},
		ingest: func(ctx context.Context) (*ingestUC.Service, func(), error) {
			ex, err := newExtractor()
			if err != nil {
				return nil, nil, err
			}
			database, err := openDB(ctx)
			if err != nil {
				return nil, nil, err
			}
			return ingestUC.NewService(pgRepo.NewArticleRepo(database), ex), func() { _ = database.Close() }, nil
		},
	}
}

func newExtractor() (ingestUC.ContentExtractor, error) {
	cfg, err := extractor.LoadConfigFromEnv()
	if err != nil {
		slog.Warn("invalid extractor configuration, using defaults", slog.Any("error", err))
	}
	return extractor.New(cfg), nil
}

func openDB(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}
