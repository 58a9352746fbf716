package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zorgadres/register/internal/addressing"
	"github.com/zorgadres/register/internal/config"
	"github.com/zorgadres/register/internal/domain/dataservice"
	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/healthcarefinder"
	"github.com/zorgadres/register/internal/platform/auth"
	"github.com/zorgadres/register/internal/platform/db"
	"github.com/zorgadres/register/internal/platform/middleware"
	"github.com/zorgadres/register/internal/platform/signing"
	"github.com/zorgadres/register/internal/platform/xmltree"
	"github.com/zorgadres/register/internal/version"
	"github.com/zorgadres/register/internal/zalimport"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "register",
		Short: "Healthcare provider directory service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(organisationCmd())
	rootCmd.AddCommand(endpointCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// newSigner returns nil when endpoint signing is disabled; the import and
// serve paths treat a nil signer as "store and serve unsigned URLs".
func newSigner(cfg *config.Config) *signing.Signer {
	if !cfg.SignEndpoints {
		return nil
	}
	return signing.NewSigner(cfg.PrivateKeyPath)
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the directory API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	signer := newSigner(cfg)

	orgRepo := organisation.NewRepoPG(pool)
	dsRepo := dataservice.NewRepoPG(pool)
	endpointRepo := endpoint.NewRepoPG(pool)

	addressingAdapter, err := addressing.NewAdapter(
		addressing.AdapterType(cfg.AddressingAdapter),
		addressing.AdapterDeps{
			Zal:    addressing.NewZalAdapter(orgRepo, dsRepo, endpointRepo, cfg.SignEndpoints),
			Signer: endpointSigner(signer),
		})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build addressing adapter")
	}
	addressingSvc := addressing.NewService(addressingAdapter)

	finderDeps := healthcarefinder.AdapterDeps{
		ZorgAB: healthcarefinder.ZorgABConfig{
			BaseURL:       cfg.ZorgABBaseURL,
			MTLSCertFile:  cfg.ZorgABMTLSCertFile,
			MTLSKeyFile:   cfg.ZorgABMTLSKeyFile,
			MTLSChainFile: cfg.ZorgABMTLSChainFile,
			Proxy:         cfg.ZorgABProxy,
		},
		Addressing:  addressingSvc,
		Signer:      endpointSigner(signer),
		MockBaseURL: cfg.MockBaseURL,
		Log:         logger,
	}
	finderAdapter, err := healthcarefinder.NewAdapter(
		healthcarefinder.AdapterType(cfg.FinderAdapter), finderDeps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build healthcare finder adapter")
	}
	mockAdapter := healthcarefinder.NewMockAdapter(endpointSigner(signer), cfg.MockBaseURL, logger)
	finder := healthcarefinder.NewFinder(finderAdapter, mockAdapter, cfg.AllowSearchBypass)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, version.Get())
	})
	e.GET("/health", healthHandler(func(ctx context.Context) bool {
		return db.Healthy(ctx, pool)
	}, finderAdapter))

	api := e.Group("", auth.Middleware(cfg.AuthSecret))
	api.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	addressing.NewHandler(addressingSvc).RegisterRoutes(api)
	healthcarefinder.NewHandler(finder).RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	return nil
}

// healthHandler reports database reachability and, when the finder adapter
// can probe its remote registry, the registry's reachability too.
func healthHandler(dbHealthy func(ctx context.Context) bool, finder healthcarefinder.Adapter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		status := map[string]string{
			"status":  "ok",
			"version": version.Version,
		}
		healthy := dbHealthy(ctx)
		if !healthy {
			status["database"] = "unreachable"
		}

		if verifier, ok := finder.(healthcarefinder.ConnectionVerifier); ok {
			if verifier.VerifyConnection(ctx) {
				status["registry"] = "ok"
			} else {
				status["registry"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			status["status"] = "unhealthy"
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}

// endpointSigner keeps a nil *Signer from becoming a non-nil interface.
func endpointSigner(signer *signing.Signer) addressing.EndpointSigner {
	if signer == nil {
		return nil
	}
	return signer
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func organisationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organisation",
		Short: "Manage the imported organisation registry",
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a provider list or provider join list XML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			tr, err := xmltree.Parse(data)
			if err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			deps := zalimport.Deps{
				Organisations: organisation.NewRepoPG(pool),
				Features:      organisation.NewFeatureRepoPG(pool),
				DataServices:  dataservice.NewRepoPG(pool),
				Endpoints:     endpoint.NewRepoPG(pool),
				Tx:            db.PoolTxRunner{Pool: pool},
				Log:           logger,
				Progress:      zalimport.ProgressBar(os.Stdout),
			}
			if signer := newSigner(cfg); signer != nil {
				deps.Signer = signer
			}

			importer, err := zalimport.NewImporter(tr.RootName(), deps)
			if err != nil {
				return err
			}

			if err := importer.ProcessXML(ctx, tr); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}
	cmd.AddCommand(importCmd)

	cleanupCmd := &cobra.Command{
		Use:   "cleanup-expired",
		Short: "Delete organisation generations older than the newest N imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetInt("keep")
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if keep == 0 {
				keep = cfg.ImportKeepGenerations
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			cleaner := zalimport.NewCleaner(organisation.NewRepoPG(pool), logger)
			return cleaner.CleanExpired(ctx, keep)
		},
	}
	cleanupCmd.Flags().Int("keep", 0, "Number of import generations to keep (default from config)")
	cmd.AddCommand(cleanupCmd)

	return cmd
}

func endpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Manage stored endpoints",
	}

	renewCmd := &cobra.Command{
		Use:   "renew-signatures",
		Short: "Re-sign every stored endpoint with the configured private key",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.PrivateKeyPath == "" {
				return fmt.Errorf("PRIVATE_KEY_PATH is required to renew signatures")
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			renewer := endpoint.NewRenewer(
				endpoint.NewRepoPG(pool),
				signing.NewSigner(cfg.PrivateKeyPath),
				db.PoolTxRunner{Pool: pool},
				logger,
			)
			result, err := renewer.Renew(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Signatures renewed: %d added, %d updated, %d skipped.\n",
				result.Added, result.Updated, result.Skipped)
			return nil
		},
	}
	cmd.AddCommand(renewCmd)

	return cmd
}
