package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/convomap/convomap/internal/config"
)

func newCheckCmd(cfg config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Inspect the stored chunk collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := db.CountChunks(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Total chunks in collection: %d\n", count)

			chunks, err := db.ListChunks(ctx, limit)
			if err != nil {
				return err
			}

			for _, c := range chunks {
				fmt.Println(strings.Repeat("=", 30))
				fmt.Printf("CHUNK ID: %s\n", c.ChunkID)
				fmt.Printf("SOURCE:   %s (%s)\n", c.SourceFile, c.SourceType)
				fmt.Printf("AUTHORS:  %s\n", strings.Join(c.Participants, ", "))
				fmt.Printf("SPAN:     %s .. %s\n",
					c.StartTimestamp.Time().Format("2006-01-02 15:04"),
					c.EndTimestamp.Time().Format("2006-01-02 15:04"),
				)
				fmt.Printf("TEXT:\n%s\n", c.RawText)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 5, "Number of chunks to display")
	return cmd
}
