package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/tollgate/internal/app"
	"github.com/alexanderramin/tollgate/internal/cli"
	"github.com/alexanderramin/tollgate/internal/config"
	"github.com/alexanderramin/tollgate/internal/daemon"
	"github.com/alexanderramin/tollgate/internal/tracing"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		wired           *app.App
		shutdownTracing tracing.Shutdown
	)
	defer func() {
		if shutdownTracing != nil {
			_ = shutdownTracing(context.Background())
		}
		if wired != nil {
			wired.Close()
		}
	}()

	c := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	c.Init = func(cmd *cobra.Command, configPath string) error {
		cfg, path, _, err := config.Load(configPath)
		if err != nil {
			return err
		}

		serving := cmd.Name() == "serve"
		logging := cfg.Logging
		// One-shot commands keep stderr quiet unless debug logging is asked for.
		if !serving && logging.Level == "info" {
			logging.Level = "warn"
		}
		logger := logging.NewLogger(os.Stderr)

		if cfg.Tracing.Enabled {
			shutdownTracing, err = tracing.Init(cfg.Tracing.ServiceName, os.Stderr, cfg.Tracing.PrettyPrint)
			if err != nil {
				return fmt.Errorf("initializing tracing: %w", err)
			}
		}

		wired, err = app.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		c.Attach(wired, path)
		c.Serve = func(ctx context.Context) error {
			d, err := daemon.New(wired)
			if err != nil {
				return err
			}
			return d.Run(ctx)
		}
		return nil
	}

	return cli.NewRootCmd(c).Execute()
}
