package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/chargeback-backend/internal/app"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, cfg, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.Open(log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			log.Info("Schema up to date")
			return nil
		},
	}
}

func seedAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if email != "" {
				cfg.AdminEmail = email
			}
			if password != "" {
				cfg.AdminPassword = password
			}
			if name != "" {
				cfg.AdminDisplayName = name
			}
			if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
				return fmt.Errorf("admin email and password are required (flags or ADMIN_EMAIL/ADMIN_PASSWORD)")
			}

			a, err := app.Open(log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.SeedAdmin(cmd.Context())
			if err != nil {
				return err
			}
			if !created {
				log.Info("Admin already exists", "email", cfg.AdminEmail)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (default $ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (default $ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&name, "name", "", "admin display name (default $ADMIN_DISPLAY_NAME)")
	return cmd
}

func bootstrap() (*logger.Logger, app.Config, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, app.Config{}, err
	}
	log.Info("Loading environment variables...")
	cfg := app.LoadConfig(log)
	if cfg.Version == "" {
		cfg.Version = Version
	}
	return log, cfg, nil
}
