package main

import (
	"fmt"
	"time"

	"searchapp_backend/database"
	"searchapp_backend/internal/app"
	"searchapp_backend/internal/auth"
	"searchapp_backend/internal/config"
	"searchapp_backend/internal/models"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return app.Run(cfg)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := database.ConnectGorm(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			fmt.Printf("Migrating %s database...\n", cfg.Database.Driver)
			if err := database.AutoMigrate(db); err != nil {
				fmt.Printf("  %s\n", color.New(color.FgRed).Sprint("FAILED"))
				return err
			}
			for _, m := range database.Models() {
				fmt.Printf("  %s %T\n", color.New(color.FgGreen).Sprint("OK"), m)
			}
			return nil
		},
	}
}

// tokenCmd выпускает токен для локальной разработки; в продакшене
// токены выдает внешний сервис аутентификации
func tokenCmd() *cobra.Command {
	var (
		userID    string
		companyID string
		role      string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}

			userRole := models.UserRole(role)
			if !userRole.IsValid() {
				return fmt.Errorf("unknown role %q (TECHNICIEN, BUREAU, ADMIN)", role)
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			if ttl <= 0 {
				ttl = time.Duration(cfg.Auth.TokenTTL) * time.Minute
			}

			token, err := auth.IssueToken(auth.Principal{
				UserID:    userID,
				CompanyID: companyID,
				Role:      userRole,
			}, []byte(cfg.Auth.JWTSecret), ttl)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s (%s, company %s, expires in %s)\n",
				color.New(color.FgGreen).Sprint("Token for"), userID, userRole, companyID, ttl)
			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (random uuid if empty)")
	cmd.Flags().StringVar(&companyID, "company", "", "company id")
	cmd.Flags().StringVar(&role, "role", string(models.UserRoleTechnicien), "TECHNICIEN, BUREAU or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl minutes)")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
