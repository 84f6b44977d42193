package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rigforge/rigforge/pkg/application/services/autobuild"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/application/services/order"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/rigforge/rigforge/pkg/infrastructure/auth"
	"github.com/rigforge/rigforge/pkg/infrastructure/config"
	csvrepo "github.com/rigforge/rigforge/pkg/infrastructure/repositories/csv"
	"github.com/rigforge/rigforge/pkg/infrastructure/repositories/postgres"
	"github.com/rigforge/rigforge/pkg/infrastructure/storage"
	httpapi "github.com/rigforge/rigforge/pkg/interfaces/http"
)

const shutdownGrace = 15 * time.Second

func main() {
	root := &cobra.Command{
		Use:           "rigforge",
		Short:         "PC parts configurator and storefront backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), schemaCommand(), seedCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	var initSchema bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), initSchema)
		},
	}
	cmd.Flags().BoolVar(&initSchema, "init-schema", false, "apply the database schema before serving")
	return cmd
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init-schema",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			return postgres.ApplySchema(ctx, pool)
		},
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.csv>",
		Short: "Load components from a CSV file into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := csvrepo.NewLoader(postgres.NewCatalogRepository(pool))
			created, err := loader.SeedCatalog(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("seeded %d components\n", created)
			return nil
		},
	}
}

func runServe(ctx context.Context, initSchema bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if initSchema {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("database schema applied")
	}

	catalogService := catalog.NewServiceWithImages(
		postgres.NewCatalogRepository(pool),
		storage.NewImageResolver(cfg.StorageBaseURL, cfg.StorageBucket),
	)
	checker := services.NewCompatibilityChecker()

	workspaces := postgres.NewWorkspaceRepository(pool)
	builds := postgres.NewSavedBuildRepository(pool)
	carts := postgres.NewCartRepository(pool)

	svcs := httpapi.Services{
		Catalog:   catalogService,
		Workspace: workspace.NewService(workspaces, builds, catalogService, checker),
		Builder:   autobuild.NewBuilder(catalogService, checker, logger),
		Cart:      cart.NewService(carts, workspaces, builds, catalogService),
		Orders:    order.NewService(postgres.NewOrderRepository(pool), postgres.NewCheckoutStore(pool), logger),
		Checker:   checker,
	}

	verifier := auth.NewHTTPVerifier(cfg.AuthURL, cfg.AuthServiceKey)
	server := httpapi.NewServer(cfg.ListenAddr, svcs, verifier, pool, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	return <-errCh
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
