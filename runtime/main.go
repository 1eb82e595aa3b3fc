package main

import (
	"github.com/sivoham-sks/sks_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.JWTService{},
		&services.AuthMiddleware{},
		&services.RateLimitService{},
		&services.MonitoringService{},

		&services.ProgressService{},
		&services.EventService{},
		&services.RegistrationService{},
		&services.ExportService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure services")
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service runtime exited")
	}
}
