package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/syllabus/internal/config"
	"github.com/cloo-solutions/syllabus/internal/database"
)

// MigrateCmd returns the migrate command group
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Apply, roll back or inspect migrations against SYLLABUS_DATABASE_URL.",
	}

	cmd.PersistentFlags().String("source", database.DefaultMigrationsSource, "Migration source URL")

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateVersionCmd())

	return cmd
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasDatabase() {
		return "", fmt.Errorf("%s_DATABASE_URL is not set", config.EnvPrefix)
	}
	return cfg.DatabaseURL, nil
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			source, _ := cmd.Flags().GetString("source")

			status, err := database.RunMigrations(url, source)
			if err != nil {
				return err
			}
			printStatus(cmd, status)
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			source, _ := cmd.Flags().GetString("source")

			status, err := database.RollbackMigrations(url, source, steps)
			if err != nil {
				return err
			}
			printStatus(cmd, status)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	return cmd
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			source, _ := cmd.Flags().GetString("source")

			status, err := database.MigrationVersion(url, source)
			if err != nil {
				return err
			}
			printStatus(cmd, status)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, status *database.MigrationStatus) {
	state := "clean"
	if status.Dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", status.Version, state)
}
