package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

func newLoadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "load <extension-id>",
		Short: "compile and register an installed extension's module.wasm",
		Args:  cobra.ExactArgs(1),
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
			slog.Info("extension loaded", "extension", args[0])
			return nil
		},
	}
}
