package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cashflow-api/internal/config"
	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"
	"cashflow-api/pkg/database"
	"cashflow-api/pkg/logger"

	"go.uber.org/zap"
)

// reset-password sets a new password for an operator account and ends its
// current session.
func main() {
	email := flag.String("email", "", "account email (defaults to ADMIN_EMAIL)")
	password := flag.String("password", "", "new password, at least 6 characters")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Must(logger.New(cfg.Env, cfg.LogLevel))
	defer log.Sync() //nolint:errcheck

	if *email == "" {
		*email = cfg.Auth.AdminEmail
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	db, err := database.Connect(cfg.Database.DSN(), logger.Named(log, "gorm"), false)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	user, err := users.FindByEmail(ctx, *email)
	if err != nil {
		log.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	var hashed model.User
	if err := hashed.SetPassword(*password); err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	if err := users.UpdatePassword(ctx, user.ID, hashed.Password); err != nil {
		log.Fatal("failed to update password", zap.Error(err))
	}
	if err := users.UpdateTokenVersion(ctx, user.ID, ""); err != nil {
		log.Fatal("failed to end session", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", *email))
}
