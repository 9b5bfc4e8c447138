// Command seed replaces the property catalogue with the built-in Coimbatore listings.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"homznspace/backend/internal/config"
	"homznspace/backend/internal/db"
	"homznspace/backend/internal/logging"
	"homznspace/backend/internal/seed"
	"homznspace/backend/internal/store"
)

func main() {
	cfg, err := config.Load("seed")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Setup(cfg.AppName+"-seed", cfg.LogLevel, cfg.LogFormat, os.Stdout)

	props, err := seed.Properties(cfg.DefaultCity)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed catalogue")
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := seed.Replace(ctx, store.NewPropertyStore(database), props)
	if err != nil {
		log.Error().Err(err).Msg("seeding failed")
		return
	}
	log.Info().Int64("removed", removed).Int("inserted", len(props)).Msg("property catalogue seeded")
}
