package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-ats/internal/catalog"
	catalogentity "github.com/ovaphlow/pitchfork/service-ats/internal/catalog/entity"
	"github.com/ovaphlow/pitchfork/service-ats/internal/router"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/database"
	"github.com/ovaphlow/pitchfork/service-ats/pkg/utilities"
)

const defaultAddr = "0.0.0.0:3001"

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "ats",
		Short:         "Applicant tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, newMigrateCmd(), newSeedCmd())
	return root
}

// env bundles the logger and database shared by every subcommand.
type env struct {
	logger *zap.SugaredLogger
	db     *sqlx.DB
	close  func()
}

func setup() (*env, error) {
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	sugar := lg.Sugar()
	db, err := database.Open(database.ConfigFromEnv())
	if err != nil {
		_ = lg.Sync()
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return &env{
		logger: sugar,
		db:     db,
		close: func() {
			db.Close()
			_ = lg.Sync()
		},
	}, nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if os.Getenv("AUTO_MIGRATE") == "true" {
				if err := database.EnsureSchema(ctx, e.db); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				e.logger.Info("schema ensured")
			}
			return serve(ctx, e, resolveAddr(addr))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HTTP_ADDR or "+defaultAddr+")")
	return cmd
}

func resolveAddr(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	return defaultAddr
}

func serve(ctx context.Context, e *env, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.RegisterRoutes(e.logger, e.db, router.ConfigFromEnv()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Infow("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		e.logger.Warnf("http server shutdown failed: %v", err)
	}
	e.logger.Info("goodbye")
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if they do not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()
			if err := database.EnsureSchema(cmd.Context(), e.db); err != nil {
				return err
			}
			e.logger.Info("schema ensured")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the reference type catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			seed, err := loadSeed(file)
			if err != nil {
				return err
			}
			e, err := setup()
			if err != nil {
				return err
			}
			defer e.close()
			n, err := catalog.NewService(e.db).Seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			e.logger.Infow("catalogs seeded", "inserted", n)
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d catalog rows\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (defaults to the built-in catalogs)")
	return cmd
}

func loadSeed(path string) (catalogentity.Seed, error) {
	if path == "" {
		return catalog.DefaultSeed(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return catalog.LoadSeed(f)
}
