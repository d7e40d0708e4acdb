package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mufti/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON HTTP API on the configured address (http.addr).

While running, edits to config.toml are picked up without a restart: the
search budgets and the ranking oracle endpoint are re-applied. When an
oracle is configured, fatwas it has not indexed yet are sent to it every
oracle.backfill_interval.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides http.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if searchService == nil || categoryService == nil || fatwaService == nil {
		return errors.New("services not configured")
	}

	settings := domain.DefaultAppSettings()
	if application != nil {
		settings = application.Current()
	}

	config := httpapi.DefaultConfig()
	config.Addr = settings.HTTP.Addr
	config.AllowedOrigins = settings.HTTP.AllowedOrigins
	config.DefaultPageSize = settings.Search.DefaultPageSize
	if serveAddr != "" {
		config.Addr = serveAddr
	}

	server, err := httpapi.NewServer(httpapi.Services{
		Search:     searchService,
		Categories: categoryService,
		Fatwas:     fatwaService,
	}, config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var wg sync.WaitGroup
	if application != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := application.WatchConfig(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped: %v", err)
			}
		}()

		if scheduler := application.Scheduler(); scheduler != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("scheduler stopped: %v", err)
				}
			}()
			logger.Info("oracle backfill every %s", scheduler.Task().Interval)
		}
	}

	cmd.Printf("Mufti API listening on %s\n", server.Addr())
	err = server.Run(ctx)
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
