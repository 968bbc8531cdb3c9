package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/daycentre-transport/cmd/cli/commands"
	"github.com/jakechorley/daycentre-transport/internal/config"
	"github.com/jakechorley/daycentre-transport/pkg/clients/sheetsclient"
	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
	"github.com/jakechorley/daycentre-transport/pkg/db"
	"github.com/jakechorley/daycentre-transport/pkg/postgres"
	"github.com/jakechorley/daycentre-transport/pkg/utils/logging"
)

var (
	env         string
	storeDriver string
	app         = &commands.AppContext{}
	closeStore  func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Day centre transport CLI - Manage routes, riders and seats",
		Long:  `A CLI tool for managing day centre transport routes, regular rosters and single-date reservations.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeStore != nil {
				closeStore()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "Override the configured store driver (postgres or memory)")

	// Add all commands
	rootCmd.AddCommand(commands.RoutesCmd(app))
	rootCmd.AddCommand(commands.CreateRouteCmd(app))
	rootCmd.AddCommand(commands.UpdateRouteCmd(app))
	rootCmd.AddCommand(commands.DeleteRouteCmd(app))
	rootCmd.AddCommand(commands.MatchCmd(app))
	rootCmd.AddCommand(commands.AssignCmd(app))
	rootCmd.AddCommand(commands.AutoAssignCmd(app))
	rootCmd.AddCommand(commands.UnassignCmd(app))
	rootCmd.AddCommand(commands.RemoveRiderCmd(app))
	rootCmd.AddCommand(commands.SyncRiderCmd(app))
	rootCmd.AddCommand(commands.ReserveCmd(app))
	rootCmd.AddCommand(commands.PassengersCmd(app))
	rootCmd.AddCommand(commands.ManifestCmd(app))
	rootCmd.AddCommand(commands.ServiceDatesCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and the store
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if storeDriver != "" {
		app.Cfg.Store.Driver = storeDriver
		if err := config.Validate(app.Cfg); err != nil {
			return err
		}
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("store", app.Cfg.Store.Driver))

	app.Options = services.Options{
		Capacities:       allocator.DefaultCapacities.WithOverrides(app.Cfg.SeatCapacities),
		MaxWriteRetries:  app.Cfg.MaxWriteRetries,
		AllowOverbooking: app.Cfg.AllowOverbooking,
		Closures:         app.Cfg.ClosureRules(),
	}

	store, err := openStore(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}

	if app.Cfg.RiderSheet != nil {
		app.Logger.Info("Initializing sheets client", zap.String("sheet_id", app.Cfg.RiderSheet.SheetID))
		sheets, err := sheetsclient.NewClientFromFile(app.Ctx,
			app.Cfg.RiderSheet.CredentialsFile, app.Cfg.RiderSheet.SheetID, app.Cfg.RiderSheet.Tab)
		if err != nil {
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
		store = db.WithRiders(store, sheets)
		app.Logger.Debug("Rider profiles will be read from the sheet")
	}

	app.Store = store
	return nil
}

// openStore connects to the configured backend, running migrations for postgres
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Gateway, error) {
	if cfg.Store.Driver == "memory" {
		logger.Info("Using in-memory store; changes are lost on exit")
		return db.NewMemoryStore(), nil
	}

	logger.Info("Connecting to database")
	database, err := postgres.NewDB(ctx, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeStore = database.Close

	logger.Debug("Running migrations")
	applied, err := database.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("Applied migrations", zap.Strings("files", applied))
	}

	logger.Info("Database initialized successfully")
	return database, nil
}
