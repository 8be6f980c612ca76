// Command acorn-host loads acorn plugins from a directory, assembles them
// into one validated service provider and runs every registered
// [hostapi.Service] until shutdown. With --watch the host re-assembles when
// new plugin binaries arrive.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ARTM2000/acorn"
	"github.com/ARTM2000/acorn/hostapi"
	"github.com/ARTM2000/acorn/internal/plughost"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath   string
		pluginDir string
		watch     bool
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:          "acorn-host",
		Short:        "Assemble and run services registered by acorn plugins",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := plughost.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("plugins") {
				cfg.PluginDir = pluginDir
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "acorn-host.toml", "path to the host config file")
	cmd.Flags().StringVarP(&pluginDir, "plugins", "p", "plugins", "directory scanned for plugin binaries")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-assemble when new plugins arrive")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	return cmd
}

func run(ctx context.Context, cfg plughost.Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "acorn-host",
	})

	// Must be installed before the first plugin registers: rich errors
	// cannot cross the plugin boundary, so the core funnels unrecoverable
	// conditions here.
	acorn.SetErrorHandler(func(err error) {
		logger.Fatal("unrecoverable error", "err", err)
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := plughost.NewLoader(cfg.PluginDir, logger)
	for {
		reload, err := runOnce(ctx, cfg, loader, logger)
		if err != nil {
			return err
		}
		if !reload {
			return nil
		}
	}
}

// runOnce assembles a provider from everything loaded so far and runs its
// services until shutdown or, when watching, until new plugins arrive.
// reload reports whether the caller should assemble again.
func runOnce(ctx context.Context, cfg plughost.Config, loader *plughost.Loader, logger *log.Logger) (reload bool, err error) {
	if n, err := loader.LoadAll(); err != nil {
		logger.Warn("some plugins failed to load", "err", err)
	} else if n > 0 {
		logger.Info("plugins loaded", "count", n)
	}

	provider, err := loader.Assemble()
	if err != nil {
		// The build error already enumerates every problem.
		return false, err
	}
	logger.Info("provider assembled", "provider", provider.String())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, runCtx := errgroup.WithContext(runCtx)

	served := 0
	for svc := range acorn.GetAll[hostapi.Service](provider) {
		served++
		g.Go(func() error {
			logger.Info("service starting", "name", svc.Name())
			return svc.Serve(runCtx)
		})
	}
	if served == 0 {
		logger.Warn("no services registered; waiting for plugins")
	}

	if cfg.Watch {
		w := plughost.NewWatcher(cfg.PluginDir, 0, logger)
		g.Go(func() error { return w.Run(runCtx) })
		g.Go(func() error {
			select {
			case <-runCtx.Done():
				return nil
			case <-w.Changes():
				logger.Info("plugin change detected, re-assembling")
				reload = true
				cancel()
				return nil
			}
		})
	}

	err = g.Wait()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	if cerr := provider.Close(closeCtx); cerr != nil {
		logger.Warn("provider close", "err", cerr)
	}

	if ctx.Err() != nil {
		logger.Info("shutdown requested")
		return false, nil
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return reload, err
}
