package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/convomap/convomap/internal/graph"
)

// WriteTriples persists one chunk's triples in a single transaction.
// Entities merge on name: the chunk_id recorded is the chunk an entity was
// first seen in. Relations merge on (subject, predicate, object).
func (s *Store) WriteTriples(ctx context.Context, chunkID string, triples []graph.Triple) error {
	if len(triples) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range triples {
		var subjectID, objectID uuid.UUID

		err = tx.QueryRow(ctx, `
			INSERT INTO graph_entities (id, name, chunk_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			uuid.New(), t.Subject, chunkID,
		).Scan(&subjectID)
		if err != nil {
			return fmt.Errorf("merge subject %q: %w", t.Subject, err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO graph_entities (id, name, chunk_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			uuid.New(), t.Object, chunkID,
		).Scan(&objectID)
		if err != nil {
			return fmt.Errorf("merge object %q: %w", t.Object, err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO graph_relations (id, subject_id, predicate, object_id, chunk_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (subject_id, predicate, object_id) DO NOTHING`,
			uuid.New(), subjectID, t.Predicate, objectID, chunkID,
		)
		if err != nil {
			return fmt.Errorf("merge relation %q: %w", t.Predicate, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ChunkIDsForEntity returns the chunk ids on relations touching any entity
// whose name contains the given text.
func (s *Store) ChunkIDsForEntity(ctx context.Context, entity string) ([]string, error) {
	query := `
		SELECT DISTINCT r.chunk_id
		FROM graph_relations r
		JOIN graph_entities su ON r.subject_id = su.id
		JOIN graph_entities ob ON r.object_id = ob.id
		WHERE su.name ILIKE '%' || $1 || '%' OR ob.name ILIKE '%' || $1 || '%'`
	return s.queryChunkIDs(ctx, query, entity)
}

// ChunkIDsBetweenEntities returns the chunk ids on relations linking the two
// entities, either directly or through one intermediate entity.
func (s *Store) ChunkIDsBetweenEntities(ctx context.Context, entityA, entityB string) ([]string, error) {
	query := `
		WITH matched_a AS (
			SELECT id FROM graph_entities WHERE name ILIKE '%' || $1 || '%'
		), matched_b AS (
			SELECT id FROM graph_entities WHERE name ILIKE '%' || $2 || '%'
		), edges AS (
			SELECT subject_id AS src, object_id AS dst, chunk_id FROM graph_relations
			UNION ALL
			SELECT object_id AS src, subject_id AS dst, chunk_id FROM graph_relations
		)
		SELECT DISTINCT chunk_id FROM (
			SELECT e1.chunk_id
			FROM edges e1
			WHERE e1.src IN (SELECT id FROM matched_a)
			  AND e1.dst IN (SELECT id FROM matched_b)
			UNION ALL
			SELECT unnest(ARRAY[e1.chunk_id, e2.chunk_id])
			FROM edges e1
			JOIN edges e2 ON e1.dst = e2.src
			WHERE e1.src IN (SELECT id FROM matched_a)
			  AND e2.dst IN (SELECT id FROM matched_b)
		) paths(chunk_id)`
	return s.queryChunkIDs(ctx, query, entityA, entityB)
}

func (s *Store) queryChunkIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
