package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AwwCookies/Chatterbox-sub002/internal/config"
	"github.com/AwwCookies/Chatterbox-sub002/internal/database"
	"github.com/AwwCookies/Chatterbox-sub002/internal/discord"
	"github.com/AwwCookies/Chatterbox-sub002/internal/handler"
	"github.com/AwwCookies/Chatterbox-sub002/internal/jobs"
	"github.com/AwwCookies/Chatterbox-sub002/internal/middleware"
	"github.com/AwwCookies/Chatterbox-sub002/internal/redis"
	"github.com/AwwCookies/Chatterbox-sub002/internal/repository"
	"github.com/AwwCookies/Chatterbox-sub002/internal/service"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db.DB)
	connRepo := repository.NewDiscordConnectionRepository(db.DB)
	oauthStateRepo := repository.NewOAuthStateRepository(db.DB)
	guildCacheRepo := repository.NewGuildCacheRepository(db.DB)
	channelCacheRepo := repository.NewChannelCacheRepository(db.DB)
	webhookRepo := repository.NewWebhookRepository(db.DB)

	buckets := discord.NewBucketStore()
	discordClient := discord.NewClient(discord.ClientOptions{
		BaseURL:  cfg.DiscordAPIBase,
		BotToken: cfg.DiscordBotToken,
		Buckets:  buckets,
	})
	oauthClient := discord.NewOAuthClient(discord.OAuthOptions{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURI:  cfg.DiscordRedirectBase + "/auth/discord/callback",
		APIBase:      cfg.DiscordAPIBase,
	})

	connectionService := service.NewConnectionService(
		cfg, connRepo, oauthStateRepo, guildCacheRepo, channelCacheRepo, webhookRepo,
		oauthClient, discordClient,
	)
	directoryService := service.NewDirectoryService(
		db, connectionService, guildCacheRepo, channelCacheRepo, discordClient, cfg.CacheStaleness(),
	)
	webhookService := service.NewWebhookService(
		cfg, connRepo, guildCacheRepo, channelCacheRepo, webhookRepo, discordClient,
	)

	authMiddleware := middleware.NewAuthMiddleware(accountRepo)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	discordHandler := handler.NewDiscordHandler(
		connectionService, directoryService, webhookService, "",
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	// The OAuth callback carries no bearer token: Discord redirects the
	// browser here and the state parameter identifies the account.
	r.Get("/auth/discord/callback", discordHandler.Callback)

	r.Route("/api/discord", func(r chi.Router) {
		r.Use(authMiddleware.Handler)
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/", discordHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(oauthStateRepo, guildCacheRepo, channelCacheRepo, config.CleanupJobInterval, config.CacheRetention)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
