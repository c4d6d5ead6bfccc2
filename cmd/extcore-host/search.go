package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mangayouknow/extcore/host"
	"github.com/spf13/cobra"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <extension-id> <query>",
		Short: "call extension_search on a loaded extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			if err := h.Load(ctx, args[0]); err != nil {
				return err
			}

			results, err := h.Search(ctx, args[0], host.SearchParams{Query: args[1], Page: page})
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page to fetch")
	return cmd
}
