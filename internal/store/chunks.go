package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/convomap/convomap/internal/segment"
)

// ScoredChunk is a chunk returned by vector search with its cosine
// similarity to the query.
type ScoredChunk struct {
	ChunkID    string
	RawText    string
	Similarity float64
}

// UpsertChunk writes one chunk and its embedding. Chunk ids are stable
// across re-runs, so re-ingestion overwrites in place.
func (s *Store) UpsertChunk(ctx context.Context, c segment.Chunk, embedding []float32) error {
	query := `
		INSERT INTO chunks (chunk_id, source_type, source_file, participants, start_ts, end_ts, raw_text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chunk_id) DO UPDATE SET
			source_type  = EXCLUDED.source_type,
			source_file  = EXCLUDED.source_file,
			participants = EXCLUDED.participants,
			start_ts     = EXCLUDED.start_ts,
			end_ts       = EXCLUDED.end_ts,
			raw_text     = EXCLUDED.raw_text,
			embedding    = EXCLUDED.embedding`
	_, err := s.pool.Exec(ctx, query,
		c.ChunkID, c.SourceType, c.SourceFile, c.Participants,
		c.StartTimestamp.Time(), c.EndTimestamp.Time(), c.RawText,
		pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", c.ChunkID, err)
	}
	return nil
}

// SearchChunks returns the top-k chunks by cosine similarity to the query
// vector.
func (s *Store) SearchChunks(ctx context.Context, queryVec []float32, limit int) ([]ScoredChunk, error) {
	query := `
		SELECT chunk_id, raw_text, 1 - (embedding <=> $1) AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`
	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var sc ScoredChunk
		if err := rows.Scan(&sc.ChunkID, &sc.RawText, &sc.Similarity); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		results = append(results, sc)
	}
	return results, rows.Err()
}

// GetChunkTexts fetches raw_text for the given chunk ids. Ids returned by a
// graph query are usable here directly, with no transformation.
func (s *Store) GetChunkTexts(ctx context.Context, chunkIDs []string) ([]string, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT raw_text FROM chunks WHERE chunk_id = ANY($1) ORDER BY chunk_id`, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("get chunk texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan raw_text: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, rows.Err()
}

// CountChunks returns the number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// ListChunks returns the first n stored chunks for inspection.
func (s *Store) ListChunks(ctx context.Context, limit int) ([]segment.Chunk, error) {
	query := `
		SELECT chunk_id, source_type, source_file, participants, start_ts, end_ts, raw_text
		FROM chunks ORDER BY chunk_id LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []segment.Chunk
	for rows.Next() {
		var c segment.Chunk
		var start, end time.Time
		if err := rows.Scan(&c.ChunkID, &c.SourceType, &c.SourceFile, &c.Participants, &start, &end, &c.RawText); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.StartTimestamp = segment.Timestamp(start)
		c.EndTimestamp = segment.Timestamp(end)
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
