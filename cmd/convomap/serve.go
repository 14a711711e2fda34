package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/api"
	"github.com/convomap/convomap/internal/config"
	"github.com/convomap/convomap/internal/events"
	"github.com/convomap/convomap/internal/query"
)

func newServeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := query.NewEngine(newOllama(cfg), db, cfg.TopK, slog.Default())

			if cfg.NatsURL != "" {
				ev, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
				if err != nil {
					slog.Warn("events disabled: nats unavailable", "error", err)
				} else {
					defer ev.Close()
					err = ev.SubscribeChunksStored(func(e events.ChunksStored) {
						slog.Info("chunk collection updated upstream",
							"chunks_file", e.ChunksFile,
							"files", e.Files,
							"chunks", e.Chunks,
						)
					})
					if err != nil {
						slog.Warn("failed to subscribe to chunk events", "error", err)
					}
				}
			}

			srv := api.NewServer(cfg.Port, engine)
			go func() {
				if err := srv.Start(); err != nil {
					slog.Error("HTTP server error", "error", err)
				}
			}()

			slog.Info("convomap ready", "port", cfg.Port)

			<-ctx.Done()
			slog.Info("shutting down")
			return nil
		},
	}
}
