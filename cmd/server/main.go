package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onboarding-reminders/internal/auth"
	"onboarding-reminders/internal/config"
	"onboarding-reminders/internal/database"
	"onboarding-reminders/internal/handlers"
	"onboarding-reminders/internal/logger"
	"onboarding-reminders/internal/services"
	"onboarding-reminders/internal/store"
	"onboarding-reminders/internal/stripeconnect"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	zlog, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Directory)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	if err := database.InitDB(cfg.Database); err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}

	redis := database.NewRedis(cfg.Redis)
	defer redis.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redis.Ping(ctx); err != nil {
			zlog.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}

	// With no Stripe key the service classifies from mirrored metadata only.
	var provider stripeconnect.Provider
	if cfg.Stripe.APIKey != "" {
		provider = stripeconnect.NewStripeProvider(cfg.Stripe.APIKey)
	} else {
		zlog.Warn("no Stripe API key configured, using metadata provider")
		provider = stripeconnect.NewMetadataProvider()
	}

	db := database.GetDB()
	vendors := store.NewVendorStore(db)
	settings := store.NewSettingsStore(db, cfg.App.SiteName, cfg.App.AdminEmail)

	classifier := services.NewClassifier(provider, redis, cfg.Vendors, zlog)
	renderer := services.NewTemplateRenderer(cfg.App.SiteName, cfg.App.BaseURL)
	mailer := services.NewEmailService(cfg.SendGrid.APIKey, cfg.App.SiteName, cfg.App.AdminEmail)
	dispatcher := services.NewDispatcher(vendors, settings, classifier, renderer, mailer, cfg.Vendors.Roles, zlog)

	checkInterval, err := time.ParseDuration(cfg.Schedule.CheckInterval)
	if err != nil {
		zlog.Fatal("Invalid schedule check interval", zap.Error(err))
	}
	worker := services.NewReminderWorker(dispatcher, cfg.Schedule.RunDay, checkInterval, zlog)
	worker.Start()
	defer worker.Stop()

	nonceTTL, err := time.ParseDuration(cfg.Admin.NonceTTL)
	if err != nil {
		zlog.Fatal("Invalid nonce TTL", zap.Error(err))
	}
	nonces := auth.NewNonceStore(redis, nonceTTL)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.SetTrustedProxies(cfg.Server.TrustedProxies)

	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Admin-Token", auth.NonceHeader)
		router.Use(cors.New(corsConfig))
	}

	h := handlers.New(settings, vendors, classifier, dispatcher, nonces, cfg.Vendors.Roles, cfg.App.SiteName, zlog)
	h.RegisterRoutes(router, cfg.Admin.Token)

	zlog.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
