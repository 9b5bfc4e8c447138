// Command create-admin creates an admin account or resets its password.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/config"
	"homznspace/backend/internal/db"
	"homznspace/backend/internal/logging"
	"homznspace/backend/internal/store"
)

const minPasswordLength = 8

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (or ADMIN_PASSWORD)")
	flag.Parse()

	cfg, err := config.Load("create-admin")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.AppName+"-create-admin", cfg.LogLevel, cfg.LogFormat, os.Stdout)

	name := strings.TrimSpace(*username)
	secret := *password
	if secret == "" {
		secret = os.Getenv("ADMIN_PASSWORD")
	}
	if name == "" {
		log.Fatal().Msg("username cannot be empty")
	}
	if len(secret) < minPasswordLength {
		log.Fatal().Int("min_length", minPasswordLength).Msg("password is too short")
	}

	hash, err := auth.HashPassword(secret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}

	client, database, err := db.ConnectDB(context.Background(), cfg.MongoURI, cfg.MongoDbName, cfg.AppName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		if err := db.DisconnectDB(client); err != nil {
			log.Error().Err(err).Msg("error disconnecting from MongoDB")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
		return
	}

	admin, created, err := store.NewAdminStore(database).Upsert(ctx, name, hash)
	if err != nil {
		log.Error().Err(err).Msg("failed to save admin")
		return
	}
	if created {
		log.Info().Str("username", admin.Username).Str("id", admin.ID.Hex()).Msg("admin created")
	} else {
		log.Info().Str("username", admin.Username).Msg("admin password reset")
	}
}
