package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/convomap/convomap/internal/segment"
)

// EmbedClient produces embedding vectors for chunk text.
type EmbedClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore receives embedded chunks.
type ChunkStore interface {
	UpsertChunk(ctx context.Context, c segment.Chunk, embedding []float32) error
}

// Ingester embeds a chunk collection batch by batch and writes it to the
// vector store. raw_text is the sole embedded payload.
type Ingester struct {
	llm       EmbedClient
	store     ChunkStore
	batchSize int
	logger    *slog.Logger
}

func NewIngester(llm EmbedClient, store ChunkStore, batchSize int, logger *slog.Logger) *Ingester {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Ingester{llm: llm, store: store, batchSize: batchSize, logger: logger}
}

// Run embeds and stores every chunk. Per-chunk failures are logged and
// skipped; the run only fails outright on context cancellation.
func (i *Ingester) Run(ctx context.Context, chunks []segment.Chunk) (int, error) {
	i.logger.Info("embedding chunks", "total", len(chunks), "batch_size", i.batchSize)

	stored := 0
	for start := 0; start < len(chunks); start += i.batchSize {
		end := start + i.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		for _, chunk := range chunks[start:end] {
			if err := ctx.Err(); err != nil {
				return stored, fmt.Errorf("embedding interrupted: %w", err)
			}

			vec, err := i.llm.Embed(ctx, chunk.RawText)
			if err != nil {
				i.logger.Warn("failed to embed chunk", "chunk_id", chunk.ChunkID, "error", err)
				continue
			}
			if err := i.store.UpsertChunk(ctx, chunk, vec); err != nil {
				i.logger.Warn("failed to store chunk", "chunk_id", chunk.ChunkID, "error", err)
				continue
			}
			stored++
		}

		i.logger.Info("batch complete", "ingested", stored, "total", len(chunks))
	}

	return stored, nil
}
