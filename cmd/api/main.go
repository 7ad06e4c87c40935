package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/credits"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/speech"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	var geoLookup middleware.CountryLookup
	if resolver != nil {
		defer resolver.Close()
		geoLookup = resolver.CountryCode
	}

	synth := speech.NewGoogleClient(speech.Options{
		APIKey:  cfg.GoogleTTSAPIKey,
		BaseURL: cfg.GoogleTTSBaseURL,
		Logger:  logger,
	})

	users := repo.NewUserRepository(dbpool)
	ledger := repo.NewLedgerRepository(dbpool)
	stats := repo.NewStatsRepository(dbpool)

	app := &handlers.App{
		Logger:    logger,
		Config:    cfg,
		Users:     users,
		Ledger:    ledger,
		Stats:     stats,
		Credits:   credits.NewService(users, synth, logger),
		Speech:    synth,
		Validate:  validator.New(),
		GeoLookup: geoLookup,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
