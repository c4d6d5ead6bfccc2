package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newUninstallCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <extension-id>",
		Short: "unload (if loaded) and remove an installed extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			if err := h.Uninstall(ctx, args[0]); err != nil {
				return err
			}
			slog.Info("extension uninstalled", "extension", args[0])
			return nil
		},
	}
}
