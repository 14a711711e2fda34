package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/config"
	"github.com/convomap/convomap/internal/events"
	"github.com/convomap/convomap/internal/ingest"
)

func newIngestCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Parse exported transcripts and write the chunk collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ev *events.Client
			if cfg.NatsURL != "" {
				var err error
				ev, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
				if err != nil {
					slog.Warn("events disabled: nats unavailable", "error", err)
				} else {
					defer ev.Close()
				}
			}

			runner := ingest.NewRunner(ingest.Config{
				ChatDir:    cfg.ChatDir,
				ChunksFile: cfg.ChunksFile,
			}, ev, slog.Default())

			summary, err := runner.Run()
			if err != nil {
				return err
			}

			if len(summary.Files) == 0 {
				return nil
			}

			fmt.Printf("\n=== Ingest Summary ===\n")
			fmt.Printf("Files processed: %d\n", len(summary.Files))
			fmt.Printf("Chunks produced: %d\n", summary.Chunks)
			for _, f := range summary.Files {
				fmt.Printf("  - %s: %d messages, %d chunks\n", f.Name, f.Messages, f.Chunks)
			}
			fmt.Printf("Output: %s\n", cfg.ChunksFile)
			return nil
		},
	}
}
