package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"financas/internal/address"
	"financas/internal/cli"
	"financas/internal/config"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.LoadEnvFile()
			cfg, err := cli.LoadAndValidateConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			logger, err := cli.SetupLogger(cmd.OutOrStdout(), cfg)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	var (
		store  address.Store
		checks []apphttp.ReadinessCheck
	)
	repo, err := cli.InitAddressStore(logger, cfg)
	if err != nil {
		return err
	}
	if repo != nil {
		defer repo.Close()
		store = repo
		checks = append(checks, apphttp.ReadinessCheck{Name: "sqlite", Check: repo.Ping})
	}

	var publisher services.SummaryPublisher
	client, err := cli.InitAMQP(logger, cfg)
	switch {
	case err != nil:
		// The form works without the broker; events are simply not sent.
		logger.Warn("AMQP unavailable, summary events disabled", log.FieldError, err)
	case client != nil:
		defer client.Close()
		publisher = client
	}

	lookup := address.NewCachedLookup(
		address.NewClient(cfg.AddressAPIURL, cfg.AddressTimeout),
		cfg.AddressCacheSize, cfg.AddressCacheTTL, store)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Logger:               logger,
		Finance:              services.NewFinanceService(nil, publisher, logger),
		Lookup:               lookup,
		RateLimitPerMinute:   cfg.RateLimitPerMinute,
		TrustedProxies:       cfg.TrustedProxies,
		ReadinessChecks:      checks,
		CacheCleanupInterval: time.Minute,
	})

	ctx, stop := cli.GracefulShutdown(ctx, logger)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting financas server", "port", cfg.Port, "address_store", cfg.AddressStore, "events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("http server on port %s: %w", cfg.Port, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
