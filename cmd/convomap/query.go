package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/config"
	"github.com/convomap/convomap/internal/query"
)

func newQueryCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "query <question>",
		Short: "Answer one question over the indexed chat history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := query.NewEngine(newOllama(cfg), db, cfg.TopK, slog.Default())

			answer, err := engine.Answer(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(answer)
			return nil
		},
	}
}
