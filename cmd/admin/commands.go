package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/config"
	"github.com/noah-isme/campus-complaint-api/internal/database"
	"github.com/noah-isme/campus-complaint-api/internal/repository"
	"github.com/noah-isme/campus-complaint-api/internal/service"
)

var (
	rootCmd = &cobra.Command{
		Use:          "complaints-admin",
		Short:        "Maintenance tasks for the campus complaint API",
		Long:         `Runs schema migrations, installs the default taxonomy and bootstraps administrator accounts using the same COMPLAINTS_* configuration as the API.`,
		SilenceUsage: true,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories and statuses",
		Long:  `Migrates the schema and inserts any default category or status whose name is not present yet. Safe to run repeatedly.`,
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account unless the email is taken",
		Args:  cobra.NoArgs,
		RunE:  runCreateAdmin,
	}

	adminName     string
	adminEmail    string
	adminPassword string
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name of the account")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "initial password (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

type environment struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func (e environment) seedService() service.SeedService {
	return service.NewSeedService(
		repository.NewCategoryRepository(e.db),
		repository.NewStatusRepository(e.db),
		repository.NewUserRepository(e.db),
		e.logger,
	)
}

// withDatabase loads configuration, connects and migrates before calling fn.
func withDatabase(ctx context.Context, fn func(environment) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("command", "admin").Logger()

	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, false)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return fn(environment{db: db, logger: logger})
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	return withDatabase(cmd.Context(), func(env environment) error {
		env.logger.Info().Int("models", len(database.Models())).Msg("schema is up to date")
		return nil
	})
}

func runSeed(cmd *cobra.Command, _ []string) error {
	return withDatabase(cmd.Context(), func(env environment) error {
		result, err := env.seedService().SeedDefaults(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed defaults: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d categories and %d statuses\n", result.Categories, result.Statuses)
		return nil
	})
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	return withDatabase(cmd.Context(), func(env environment) error {
		user, created, err := env.seedService().EnsureAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
		if errors.Is(err, service.ErrAdminCredentialsRequired) {
			return fmt.Errorf("%w: pass --name, --email and --password", err)
		}
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "account %s already exists (id %d, role %s)\n", user.Email, user.ID, user.Role)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
		return nil
	})
}
