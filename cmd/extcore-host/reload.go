package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newReloadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <extension-id>",
		Short: "unload and load an extension in one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			if err := h.Reload(ctx, args[0]); err != nil {
				return err
			}
			slog.Info("extension reloaded", "extension", args[0])
			return nil
		},
	}
}
