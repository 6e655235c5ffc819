// Command setup-admin creates the first superadmin account, or resets its
// password with -reset.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/streamcart/streamcart_backend/apperr"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/models"
	"github.com/streamcart/streamcart_backend/repositories"
	"github.com/streamcart/streamcart_backend/utils"
)

func main() {
	_ = godotenv.Load()

	var email, password, name string
	var reset bool
	flag.StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "admin email (default $ADMIN_EMAIL)")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password (default $ADMIN_PASSWORD)")
	flag.StringVar(&name, "name", "Super Admin", "display name for a new admin")
	flag.BoolVar(&reset, "reset", false, "reset the password of an existing admin")
	flag.Parse()

	logger.Init(logger.Config{Level: "info", Format: "console"})

	if email == "" || len(password) < 6 {
		logger.Fatal().Msg("an email and a password of at least 6 characters are required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	client, err := config.ConnectDB(cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer client.Disconnect(ctx)

	admins := repositories.NewAdminRepository(client.Database(cfg.Mongo.Database))
	if err := run(ctx, admins, utils.NormalizeEmail(email), password, name, reset); err != nil {
		logger.Fatal().Err(err).Str("email", email).Msg("setup-admin failed")
	}
}

func run(ctx context.Context, admins *repositories.AdminRepository, email, password, name string, reset bool) error {
	existing, err := admins.FindByEmail(ctx, email)
	if err != nil && !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	switch {
	case existing != nil && reset:
		if _, err := admins.SetPassword(ctx, existing.ID, string(hash)); err != nil {
			return err
		}
		logger.Info().Str("email", email).Str("role", existing.Role).Msg("admin password reset")
	case existing != nil:
		logger.Warn().Str("email", email).Msg("admin already exists, pass -reset to change its password")
	case reset:
		return apperr.NotFound("Admin not found with email %s, run without -reset to create it", email)
	default:
		admin := &models.Admin{
			Name:        name,
			Email:       email,
			Password:    string(hash),
			Role:        models.AdminRoleSuper,
			Permissions: superPermissions(),
			IsActive:    true,
		}
		if err := admins.Create(ctx, admin); err != nil {
			return err
		}
		logger.Info().Str("email", email).Str("id", admin.ID.Hex()).Msg("superadmin created, change the password after first login")
	}
	return nil
}

func superPermissions() models.AdminPermissions {
	all := models.CRUDPermission{View: true, Create: true, Edit: true, Delete: true}
	return models.AdminPermissions{Users: all, Products: all, Orders: all, Analytics: all}
}
