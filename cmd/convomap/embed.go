package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/config"
	"github.com/convomap/convomap/internal/embed"
	"github.com/convomap/convomap/internal/ingest"
)

func newEmbedCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Embed the chunk collection into the vector store",
		RunE: func(cmd *cobra.Command, args []string) error {
			chunks, err := ingest.LoadCollection(cfg.ChunksFile)
			if err != nil {
				return fmt.Errorf("load chunks (run ingest first?): %w", err)
			}
			slog.Info("chunk collection loaded", "file", cfg.ChunksFile, "chunks", len(chunks))

			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ingester := embed.NewIngester(newOllama(cfg), db, cfg.EmbedBatch, slog.Default())
			stored, err := ingester.Run(ctx, chunks)
			if err != nil {
				return err
			}

			fmt.Printf("\n=== Embedding Complete ===\n")
			fmt.Printf("Chunks embedded and stored: %d/%d\n", stored, len(chunks))
			return nil
		},
	}
}
