package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/config"
	"github.com/convomap/convomap/internal/graph"
	"github.com/convomap/convomap/internal/ingest"
)

func newExtractCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract knowledge-graph triples from each chunk via the chat model",
		RunE: func(cmd *cobra.Command, args []string) error {
			chunks, err := ingest.LoadCollection(cfg.ChunksFile)
			if err != nil {
				return fmt.Errorf("load chunks (run ingest first?): %w", err)
			}

			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ext := graph.New(newOllama(cfg), slog.Default())

			batchSize := cfg.ExtractBatch
			if batchSize <= 0 {
				batchSize = 50
			}
			slog.Info("extracting triples", "chunks", len(chunks), "batch_size", batchSize)

			totalTriples := 0
			for start := 0; start < len(chunks); start += batchSize {
				end := start + batchSize
				if end > len(chunks) {
					end = len(chunks)
				}

				for _, chunk := range chunks[start:end] {
					if err := ctx.Err(); err != nil {
						return fmt.Errorf("extraction interrupted: %w", err)
					}

					triples, err := ext.Extract(ctx, chunk.ChunkID, chunk.RawText)
					if err != nil {
						slog.Warn("extraction failed", "chunk_id", chunk.ChunkID, "error", err)
						continue
					}
					if len(triples) == 0 {
						continue
					}

					if err := db.WriteTriples(ctx, chunk.ChunkID, triples); err != nil {
						return fmt.Errorf("write triples for %s: %w", chunk.ChunkID, err)
					}
					totalTriples += len(triples)
				}

				slog.Info("batch complete", "processed", end, "total", len(chunks), "triples", totalTriples)
			}

			fmt.Printf("\n=== Graph Extraction Complete ===\n")
			fmt.Printf("Chunks processed: %d\n", len(chunks))
			fmt.Printf("Triples extracted: %d\n", totalTriples)
			return nil
		},
	}
}
