package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/supply-board/cmd/cli/commands"
	"github.com/jakechorley/supply-board/internal/config"
	"github.com/jakechorley/supply-board/internal/metrics"
	"github.com/jakechorley/supply-board/pkg/db"
	"github.com/jakechorley/supply-board/pkg/postgres"
	"github.com/jakechorley/supply-board/pkg/sqlite"
	"github.com/jakechorley/supply-board/pkg/utils/logging"
)

var (
	env         string
	verbose     bool
	metricsFile string
	app         = &commands.AppContext{Out: os.Stdout}
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "supply-board",
		Short:         "Supply Board CLI - Plan production batches across suppliers",
		Long:          `A CLI tool for assigning demand to capacity limited suppliers, editing the resulting plans, and costing delivery runs.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if metricsFile != "" {
				if err := metrics.WriteToTextfile(metricsFile); err != nil {
					app.Logger.Warn("Failed to write metrics", zap.String("path", metricsFile), zap.Error(err))
				}
			}
			if app.Database != nil {
				app.Database.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GeneratePlanCmd(app))
	rootCmd.AddCommand(commands.ListPlansCmd(app))
	rootCmd.AddCommand(commands.ShowPlanCmd(app))
	rootCmd.AddCommand(commands.MovePlanCmd(app))
	rootCmd.AddCommand(commands.EditPlanCmd(app))
	rootCmd.AddCommand(commands.RouteCmd(app))
	rootCmd.AddCommand(commands.ExportPlanCmd(app))
	rootCmd.AddCommand(commands.PublishPlanCmd(app))
	rootCmd.AddCommand(commands.ImportPlanCmd(app))
	rootCmd.AddCommand(commands.WeeksCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, metrics and database
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	metrics.RegisterDefault()

	app.Database, err = openStore(app.Ctx, app.Cfg.Database, app.Logger)
	if err != nil {
		return err
	}
	app.Logger.Info("Database initialized successfully", zap.String("driver", app.Cfg.Database.Driver))

	return nil
}

// openStore connects to the configured plan store and brings its schema up to date
func openStore(ctx context.Context, cfg config.Database, logger *zap.Logger) (db.PlanStore, error) {
	switch cfg.Driver {
	case "postgres":
		pg, err := postgres.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("Running database migrations")
		if err := pg.RunMigrations(ctx, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, nil
	case "sqlite":
		store, err := sqlite.NewDB(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
