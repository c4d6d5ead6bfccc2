package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <extension-id>",
		Short: "show the flat descriptor of an installed extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			desc, err := h.GetInfo(args[0])
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(desc, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
}
