// Command roomctl runs operator tasks against the reservation database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reservaja/internal/config"
	"reservaja/internal/db"
	"reservaja/internal/repository"
	"reservaja/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var driver, dsn string
	root := &cobra.Command{
		Use:           "roomctl",
		Short:         "Operator tooling for the room reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadDotEnv()
		},
	}
	root.PersistentFlags().StringVar(&driver, "driver", "", "database driver: postgres or sqlite3 (default $DATABASE_DRIVER)")
	root.PersistentFlags().StringVar(&dsn, "database-url", "", "database DSN or SQLite path (default $DATABASE_URL)")

	open := func() (*sql.DB, string, error) {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return nil, "", err
		}
		if driver != "" {
			cfg.DatabaseDriver = driver
		}
		if dsn != "" {
			cfg.DatabaseURL = dsn
		}
		conn, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, "", err
		}
		return conn, cfg.DatabaseDriver, nil
	}

	root.AddCommand(newMigrateCmd(open), newCreateAdminCmd(open))
	return root
}

type openFunc func() (*sql.DB, string, error)

func newMigrateCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, driver, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.RunMigrations(conn, driver); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCreateAdminCmd(open openFunc) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, driver, err := open()
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.RunMigrations(conn, driver); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			svc := service.NewAuthService(repository.NewUserRepository(conn), nil, logger)
			user, err := svc.CreateAdmin(ctx, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
