package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the chunk collection and graph tables if absent.
// The embedding column dimension matches the nomic-embed-text model.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id     TEXT PRIMARY KEY,
		source_type  TEXT NOT NULL,
		source_file  TEXT NOT NULL,
		participants TEXT[] NOT NULL,
		start_ts     TIMESTAMPTZ NOT NULL,
		end_ts       TIMESTAMPTZ NOT NULL,
		raw_text     TEXT NOT NULL,
		embedding    vector(768)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

	CREATE TABLE IF NOT EXISTS graph_entities (
		id       UUID PRIMARY KEY,
		name     TEXT NOT NULL UNIQUE,
		chunk_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS graph_relations (
		id         UUID PRIMARY KEY,
		subject_id UUID NOT NULL REFERENCES graph_entities(id),
		predicate  TEXT NOT NULL,
		object_id  UUID NOT NULL REFERENCES graph_entities(id),
		chunk_id   TEXT NOT NULL,
		UNIQUE (subject_id, predicate, object_id)
	);

	CREATE INDEX IF NOT EXISTS idx_relations_chunk_id ON graph_relations(chunk_id);
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
