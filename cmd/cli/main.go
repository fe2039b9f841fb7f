package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kestrelfp/deal-allocator/cmd/cli/commands"
	"github.com/kestrelfp/deal-allocator/internal/config"
	"github.com/kestrelfp/deal-allocator/pkg/clients/calendarclient"
	"github.com/kestrelfp/deal-allocator/pkg/clients/crmclient"
	"github.com/kestrelfp/deal-allocator/pkg/postgres"
	"github.com/kestrelfp/deal-allocator/pkg/utils/logging"
)

const crmTokenEnvVar = "CRM_API_TOKEN"

var (
	env     string
	verbose bool
	app     *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Kestrel Deal Allocator - Assign deals to advisers by earliest availability",
		Long:  `A CLI tool for allocating incoming deals to financial advisers based on their capacity, leave, and quota overrides.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands; the shared context is populated by initApp
	app = &commands.AppContext{}
	rootCmd.AddCommand(commands.AllocateDealCmd(app))
	rootCmd.AddCommand(commands.ViewCapacityCmd(app))
	rootCmd.AddCommand(commands.ListAdvisersCmd(app))
	rootCmd.AddCommand(commands.RefreshOverridesCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Load OAuth client configuration
	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.Logger.Debug("OAuth configuration loaded successfully")

	// Initialize calendar client
	app.Logger.Info("Initializing calendar client")
	app.CalendarClient, err = calendarclient.NewClient(app.Ctx, oauthCfg, env)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}
	app.Logger.Debug("Calendar client initialized successfully")

	// Initialize CRM client
	app.Logger.Info("Initializing CRM client")
	crmToken := os.Getenv(crmTokenEnvVar)
	if crmToken == "" {
		return fmt.Errorf("%s environment variable is required", crmTokenEnvVar)
	}
	app.CRMClient, err = crmclient.NewClient(app.Ctx, app.Cfg.CRMBaseURL, crmToken)
	if err != nil {
		return fmt.Errorf("failed to create crm client: %w", err)
	}
	app.Logger.Debug("CRM client initialized successfully")

	// Connect to the database and apply migrations
	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = database
	app.Logger.Info("Database initialized successfully")

	// The override repository caches rows until refreshOverrides is run
	app.Overrides = postgres.NewOverrideRepository(database)

	return nil
}
