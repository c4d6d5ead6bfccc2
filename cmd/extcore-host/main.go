// Command extcore-host is a manual smoke-testing front end over the host
// control plane: list, load, and call extensions from a shell without
// wiring up the desktop app.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mangayouknow/extcore/config"
	"github.com/mangayouknow/extcore/host"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootFlags carries the persistent flags shared by every subcommand.
type rootFlags struct {
	extensionsDir string
	configPath    string
	metrics       bool
	verbose       bool

	shutdownMetrics func(context.Context) error
}

// newHost builds a Host from the persistent flags: the config file (when
// given) supplies the sandbox and runtime bounds, --extensions-dir overrides
// the config's directory, and --metrics attaches a stdout OpenTelemetry
// exporter.
func (f *rootFlags) newHost(ctx context.Context) (*host.Host, error) {
	opts := []host.Option{host.WithLogger(slog.Default())}

	dir := f.extensionsDir
	if f.configPath != "" {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		if dir == "" {
			dir = cfg.ExtensionsDir
		}
		opts = append(opts,
			host.WithSandboxConfig(cfg.ToSandboxConfig()),
			host.WithRuntimeConfig(cfg.ToRuntimeConfig()))
	}
	if dir == "" {
		return nil, fmt.Errorf("one of --extensions-dir or --config is required")
	}

	if f.metrics {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(resource.Default()),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		f.shutdownMetrics = provider.Shutdown
		opts = append(opts, host.WithMeter(provider.Meter("extcore-host")))
	}

	return host.New(ctx, dir, opts...)
}

func (f *rootFlags) close(ctx context.Context) {
	if f.shutdownMetrics != nil {
		if err := f.shutdownMetrics(ctx); err != nil {
			slog.Warn("metrics shutdown failed", "error", err)
		}
	}
}

func addRootFlags(fs *pflag.FlagSet, f *rootFlags) {
	fs.StringVar(&f.extensionsDir, "extensions-dir", "", "directory containing installed extensions")
	fs.StringVar(&f.configPath, "config", "", "path to a YAML host configuration file")
	fs.BoolVar(&f.metrics, "metrics", false, "print OpenTelemetry metrics to stdout on exit")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "extcore-host",
		Short:         "drive the extension host control plane from a shell",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		},
	}

	addRootFlags(cmd.PersistentFlags(), flags)

	cmd.AddCommand(
		newListCmd(flags),
		newInfoCmd(flags),
		newLoadCmd(flags),
		newUnloadCmd(flags),
		newReloadCmd(flags),
		newSearchCmd(flags),
		newInstallCmd(flags),
		newUninstallCmd(flags),
	)
	return cmd
}
