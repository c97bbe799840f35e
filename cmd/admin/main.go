// Command admin runs one-off maintenance tasks against the storefront
// database and identity provider.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront-api/internal/app"
	"storefront-api/internal/core/config"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/domain"
	"storefront-api/internal/repo"
	"storefront-api/internal/service"
	"storefront-api/internal/transport/http/validate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "admin",
		Short:        "storefront maintenance commands",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	root.AddCommand(newMigrateCmd(&cfgPath), newCreateAdminCmd(&cfgPath))
	return root
}

func newMigrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(*cfgPath)
			if err != nil {
				return err
			}
			log, cleanup := logger.New(cfg.Log)
			defer cleanup()

			cfg.DB.AutoMigrate = false
			db, err := app.OpenDB(cfg, log)
			if err != nil {
				return err
			}
			if err := repo.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("schema migrated")
			return nil
		},
	}
}

func newCreateAdminCmd(cfgPath *string) *cobra.Command {
	var in service.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "register a sys-admin account through the normal registration flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			validate.Register()
			if err := validate.Struct(in); err != nil {
				return err
			}
			cfg, err := config.Read(*cfgPath)
			if err != nil {
				return err
			}
			log, cleanup := logger.New(cfg.Log)
			defer cleanup()

			a, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			if _, err := a.Users.Create(ctx, in, domain.RoleSysAdmin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			log.Info("sys-admin created", zap.String("email", in.Email))
			fmt.Fprintf(cmd.OutOrStdout(), "created sys-admin %s\n", in.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "login e-mail")
	f.StringVar(&in.Password, "password", "", "initial password (min 8)")
	f.StringVar(&in.Name, "name", "Administrator", "display name")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Document, "document", "", "CPF or CNPJ (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}
