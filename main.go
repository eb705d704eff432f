package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weathernow/api"
	"weathernow/collector"
	"weathernow/models"
)

var (
	configFile string
	unitsFlag  string
	debug      bool
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, collector.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "weathernow",
		Short:         "Current conditions and a 5-day outlook from OpenWeatherMap",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file (JSON, YAML or TOML)")
	root.PersistentFlags().StringVar(&unitsFlag, "units", "", "Unit system: metric or imperial (default from config)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newCurrentCmd(),
		newCoordsCmd(),
		newHereCmd(),
		newServeCmd(),
	)
	return root
}

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "current <city>",
		Short:   "Show weather for a city",
		Example: "  weathernow current London\n  weathernow current \"São Paulo\" --units imperial",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := models.CityLocation(strings.Join(args, " "))
			return runFetch(cmd.Context(), func(ctx context.Context, c *collector.Collector) (models.Report, error) {
				return c.Fetch(ctx, loc)
			})
		},
	}
}

func newCoordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coords <lat> <lon>",
		Short: "Show weather for a coordinate pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[0])
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[1])
			}
			loc := models.CoordsLocation(lat, lon)
			return runFetch(cmd.Context(), func(ctx context.Context, c *collector.Collector) (models.Report, error) {
				return c.Fetch(ctx, loc)
			})
		},
	}
}

func newHereCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "here",
		Short: "Show weather for the current position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), func(ctx context.Context, c *collector.Collector) (models.Report, error) {
				return c.FetchHere(ctx)
			})
		},
	}
}

func runFetch(ctx context.Context, fetch func(context.Context, *collector.Collector) (models.Report, error)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configFile, unitsFlag, debug)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	report, err := fetch(ctx, a.collector)
	if err != nil {
		return err
	}
	renderReport(os.Stdout, report, a.opts.Days)
	return nil
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configFile, unitsFlag, debug)
			if err != nil {
				return err
			}
			defer a.logger.Sync()

			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			server := api.NewServer(a.collector, api.NewReportStore(), a.cfg.Server.Port, a.logger)

			// Log session changes as they happen
			done := make(chan struct{})
			go func() {
				for {
					select {
					case ev := <-a.collector.Updates():
						a.logger.Debug("session update",
							zap.Stringer("kind", ev.Kind),
							zap.Uint64("generation", ev.Generation),
							zap.Stringer("location", ev.Location),
						)
					case <-done:
						return
					}
				}
			}()

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Start()
			}()

			// Set up channel for graceful shutdown; SIGHUP drops cached payloads
			shutdownChan := make(chan os.Signal, 1)
			signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		wait:
			for {
				select {
				case err := <-errChan:
					close(done)
					return err
				case sig := <-shutdownChan:
					if sig == syscall.SIGHUP {
						if a.cache != nil {
							a.cache.Purge()
							a.logger.Info("cache purged")
						}
						continue
					}
					a.logger.Info("shutting down", zap.String("signal", sig.String()))
					break wait
				}
			}
			close(done)

			if err := server.Shutdown(5 * time.Second); err != nil {
				a.logger.Warn("server forced to shut down", zap.Error(err))
			}
			a.logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to run the server on (overrides config)")
	return cmd
}
