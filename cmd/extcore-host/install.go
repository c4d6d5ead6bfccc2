package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newInstallCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "install <manifest-path> <wasm-path>",
		Short: "validate and install an extension from local files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestBytes, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			wasmBytes, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}

			ctx := context.Background()
			h, err := flags.newHost(ctx)
			if err != nil {
				return err
			}
			defer h.Close(ctx)
			defer flags.close(ctx)

			if err := h.InstallFromFile(manifestBytes, wasmBytes); err != nil {
				return err
			}
			slog.Info("extension installed")
			return nil
		},
	}
}
