package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aussiebroadwan/tenantry/internal/web/app"
	"github.com/aussiebroadwan/tenantry/internal/web/service"
	"github.com/aussiebroadwan/tenantry/pkg/cryptox"
)

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:           "tenantry-web",
	Short:         "Tenantry multi-tenant account web application",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if v, err = app.NewViper(); err != nil {
			return err
		}
		return app.BindFlags(v, cmd.Flags())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(v)
		if err != nil {
			return err
		}

		application, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		return application.Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(v)
		if err != nil {
			return err
		}

		db, err := app.OpenStore(cfg, app.NewLogger(cfg))
		if err != nil {
			return err
		}
		return db.Close()
	},
}

var seedData = service.SeedData{}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a super admin, a demo account and its invoices in an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := app.LoadConfig(v)
		if err != nil {
			return err
		}
		logger := app.NewLogger(cfg)
		cryptox.SetPepperPath(cfg.PepperFile)

		db, err := app.OpenStore(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		err = (&service.SeedService{Store: db}).Seed(context.Background(), seedData)
		if errors.Is(err, service.ErrAlreadySeeded) {
			logger.Info("database already seeded, nothing to do")
			return nil
		}
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int("port", 8080, "HTTP server port")
	pf.String("env", "dev", "Environment (dev, staging, prod)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "json", "Log format (json, text)")
	pf.String("database-file", "tenantry.db", "Path to the SQLite database file")
	pf.String("pepper-file", "pepper", "Path to the password pepper file")
	pf.String("base-domain", "localhost", "Base domain for tenant subdomains")
	pf.String("nats-url", "", "NATS server URL for event publishing (disabled when empty)")

	sf := seedCmd.Flags()
	sf.StringVar(&seedData.AdminEmail, "admin-email", "admin@example.com", "Super admin email")
	sf.StringVar(&seedData.AdminPassword, "admin-password", "", "Super admin password")
	sf.StringVar(&seedData.AccountName, "account-name", "Acme", "Demo account name")
	sf.StringVar(&seedData.AccountPath, "account-path", "acme", "Demo account path segment")
	sf.StringVar(&seedData.Subdomain, "subdomain", "acme", "Demo account subdomain")
	sf.StringVar(&seedData.OwnerEmail, "owner-email", "owner@example.com", "Demo account owner email")
	sf.StringVar(&seedData.OwnerPassword, "owner-password", "", "Demo account owner password")
	sf.IntVar(&seedData.Invoices, "invoices", 12, "Number of demo invoices")
	_ = seedCmd.MarkFlagRequired("admin-password")
	_ = seedCmd.MarkFlagRequired("owner-password")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
