package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	var loadedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list installed or loaded extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			if loadedOnly {
				out, _ := json.MarshalIndent(h.ListLoaded(), "", "  ")
				fmt.Println(string(out))
				return nil
			}

			infos, err := h.ListInstalled()
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(infos, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&loadedOnly, "loaded", false, "only show currently loaded extensions")
	return cmd
}
