// Package store is the sole holder of the database handle: every other
// component receives the Store and never touches SQL directly.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dkoraitest/consultant-copilot/internal/config"
	"github.com/dkoraitest/consultant-copilot/internal/logger"
	apperrors "github.com/dkoraitest/consultant-copilot/internal/errors"
	"github.com/dkoraitest/consultant-copilot/internal/types"
	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// Store implements interfaces.Store over a Postgres database with pgvector
// columns.
type Store struct {
	db *gorm.DB
}

var _ interfaces.Store = (*Store)(nil)

// New opens the database connection, runs the entity migrations, and
// creates the ANN indexes required by diversified search.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&types.Client{},
		&types.Meeting{},
		&types.Summary{},
		&types.MeetingEmbedding{},
		&types.ChatRoom{},
		&types.ChatMessage{},
		&types.ChatEmbedding{},
		&types.Setting{},
		&types.Hypothesis{},
		&types.Lead{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := ensureIndexes(db); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(10 * time.Minute)
	}

	return &Store{db: db}, nil
}

// ensureIndexes creates the ANN indexes production schemas require: HNSW
// over the meeting corpus, IVF-flat over the (smaller, higher-churn) chat
// corpus.
func ensureIndexes(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_meeting_embeddings_hnsw
		 ON meeting_embeddings USING hnsw (embedding vector_cosine_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_embeddings_ivfflat
		 ON chat_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// withTransaction runs fn in a transaction and reports any failure as the
// ingestion taxonomy's transient category; connectivity failures and
// constraint violations are not told apart.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err != nil {
		logger.GetLogger(ctx).WithField("component", "store").Errorf("transaction failed: %v", err)
		return apperrors.NewTransientIOError("store transaction failed", err)
	}
	return nil
}
