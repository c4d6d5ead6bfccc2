package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newUnloadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unload <extension-id>",
		Short: "unregister a loaded extension's compiled module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			h.Unload(ctx, args[0])
			slog.Info("extension unloaded", "extension", args[0])
			return nil
		},
	}
}
