// Package main runs the multilingual site backend with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Holy-Fun-Yeah/hfy-website-sub001/config"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/about"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/content"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/events"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/i18n"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/identity"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/media"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/middleware"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/notifier"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/payments"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/posts"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/registrations"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/internal/translator"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/cache"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/database"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/markdown"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/redis"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/response"
	"github.com/Holy-Fun-Yeah/hfy-website-sub001/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis only backs the resolved-content cache; the site serves without it.
	var resolverCache content.Cache
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, content cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		resolverCache = cache.New(rdb, time.Duration(cfg.Redis.ContentTTLMinutes)*time.Minute, logger)
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			MediaBucket:          cfg.AWS.MediaBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	var tr translator.Translator = translator.Noop{}
	if cfg.Translator.BaseURL != "" {
		tr = translator.NewHTTPClient(cfg.Translator.BaseURL, cfg.Translator.APIKey)
	}
	prefill := translator.NewPrefiller(tr, logger)

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.Discord.BotToken != "" {
		discord, err := notifier.NewDiscord(cfg.Discord.BotToken, cfg.Discord.ChannelID, logger)
		if err != nil {
			logger.Warn("discord notifier disabled", zap.Error(err))
		} else {
			notify = discord
		}
	}

	// Identity (provider-issued tokens, local profiles)
	tokenVerifier := identity.NewTokenVerifier(cfg.Identity.JWTSecret)
	profileRepo := identity.NewRepository(pool)
	var provider identity.Provider
	if cfg.Identity.ProviderBaseURL != "" {
		provider = identity.NewHTTPProvider(cfg.Identity.ProviderBaseURL, cfg.Identity.ProviderAdminKey)
	}
	identityService := identity.NewService(tokenVerifier, profileRepo, provider, logger)
	identityHandler := identity.NewHandler(identityService, logger)

	// Translated content
	contentRepo := content.NewRepository(pool)
	resolver := content.NewResolver(contentRepo, resolverCache, markdown.NewRenderer(), logger)

	postRepo := posts.NewRepository(pool, contentRepo)
	postHandler := posts.NewHandler(postRepo, resolver, prefill, s3Client)

	eventRepo := events.NewRepository(pool, contentRepo)
	eventHandler := events.NewHandler(eventRepo, resolver, prefill, s3Client)

	aboutRepo := about.NewRepository(pool, contentRepo)
	aboutHandler := about.NewHandler(aboutRepo, resolver, prefill, s3Client)

	// Registrations and payments
	registrationRepo := registrations.NewRepository(pool)
	paymentClient := payments.NewClient(cfg.Payment.BaseURL, cfg.Payment.SecretKey, cfg.Payment.Currency, logger)
	registrationService := registrations.NewService(registrationRepo, eventRepo, paymentClient, notify, logger)
	registrationHandler := registrations.NewHandler(registrationService, logger)
	paymentWebhook := payments.NewWebhookHandler(cfg.Payment.WebhookSecret, registrationService, logger)

	mediaHandler := media.NewHandler(s3Client, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Language())

	// Health and language catalog
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/languages", func(c *gin.Context) { response.OK(c, i18n.Languages()) })

	// Public content
	router.GET("/posts", postHandler.List)
	router.GET("/posts/:id", postHandler.Get)
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.Get)
	router.GET("/pages", aboutHandler.List)
	router.GET("/pages/:slug", aboutHandler.Get)

	// Payment provider webhook (no bearer auth; HMAC signature checked inside)
	router.POST("/payments/webhook", paymentWebhook.Handle)

	// Member API (provider-issued bearer token required)
	api := router.Group("")
	api.Use(middleware.Auth(identityService))
	{
		api.GET("/me", identityHandler.Me)
		api.DELETE("/me", identityHandler.DeleteMe)

		api.POST("/registrations", registrationHandler.Register)
		api.GET("/registrations/mine", registrationHandler.ListMine)
		api.GET("/registrations/:id", registrationHandler.Get)
		api.POST("/registrations/:id/cancel", registrationHandler.Cancel)
	}

	// Admin API
	admin := router.Group("/admin")
	admin.Use(middleware.Auth(identityService), middleware.RequireAdmin())
	{
		admin.GET("/posts", postHandler.ListAdmin)
		admin.POST("/posts", postHandler.Create)
		admin.GET("/posts/:id", postHandler.GetAdmin)
		admin.PUT("/posts/:id", postHandler.Update)
		admin.DELETE("/posts/:id", postHandler.Delete)

		admin.GET("/events", eventHandler.ListAdmin)
		admin.POST("/events", eventHandler.Create)
		admin.GET("/events/:id", eventHandler.GetAdmin)
		admin.PUT("/events/:id", eventHandler.Update)
		admin.DELETE("/events/:id", eventHandler.Delete)

		admin.GET("/pages", aboutHandler.ListAdmin)
		admin.GET("/pages/:slug", aboutHandler.GetAdmin)
		admin.PUT("/pages/:slug", aboutHandler.Save)
		admin.DELETE("/pages/:slug", aboutHandler.Delete)

		admin.POST("/registrations/:id/refund", registrationHandler.Refund)
		admin.POST("/identity/reconcile", identityHandler.Reconcile)

		admin.POST("/media/presign", mediaHandler.Presign)
		admin.DELETE("/media", mediaHandler.Delete)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
