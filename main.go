package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/controllers"
	"github.com/AliRajag51/bookstore-backend/initializers"
	"github.com/AliRajag51/bookstore-backend/jobs"
	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/notifications"
	"github.com/AliRajag51/bookstore-backend/routes"
	"github.com/AliRajag51/bookstore-backend/services"
	"github.com/AliRajag51/bookstore-backend/utils"
)

func newMailer(cfg initializers.Config, log *logrus.Logger) utils.Mailer {
	switch cfg.MailTransport {
	case "http":
		return utils.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.Sender())
	case "log":
		return utils.LogMailer{Log: log}
	default:
		return utils.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.Sender(),
		}
	}
}

func main() {
	initializers.LoadEnv()
	cfg, err := initializers.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := initializers.NewLogger(cfg)

	db, err := initializers.ConnectToDB(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Database unavailable")
	}
	if err := initializers.SyncDatabase(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	sessions, err := utils.NewSessionIssuer(cfg.JWTSecret, cfg.CookieSecure)
	if err != nil {
		log.WithError(err).Fatal("Invalid session configuration")
	}

	notifier := notifications.New(newMailer(cfg, log), notifications.Options{
		Workers:     cfg.NotifyWorkers,
		QueueSize:   cfg.NotifyQueueSize,
		MaxAttempts: cfg.NotifyMaxAttempts,
		Backoff:     cfg.NotifyBackoff,
	}, log)
	notifier.Start()

	var uploader services.ImageUploader
	if cfg.S3Bucket != "" {
		s3Uploader, err := utils.NewS3Uploader(context.Background(), cfg.S3Bucket)
		if err != nil {
			log.WithError(err).Fatal("Failed to configure image storage")
		}
		uploader = s3Uploader
	} else {
		log.Warn("AWS_S3_BUCKET not set, book image upload disabled")
	}

	authService := services.NewAuthService(db, sessions, notifier, cfg.FrontendURL, log)
	orderService := services.NewOrderService(db, notifier, log)
	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, log)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.Register(authService, limiter); err != nil {
		log.WithError(err).Fatal("Failed to schedule jobs")
	}
	scheduler.Start()

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()
	server.Use(
		gin.Recovery(),
		middlewares.RequestLogger(log),
		middlewares.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Origins(),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", controllers.IdempotencyHeader},
			ExposeHeaders:    []string{"Content-Length", middlewares.TraceHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	routes.Register(server, routes.Dependencies{
		Auth:         controllers.NewAuthController(authService, sessions, log),
		Books:        controllers.NewBookController(services.NewCatalogService(db, uploader), log),
		Carts:        controllers.NewCartController(services.NewCartService(db), log),
		Orders:       controllers.NewOrderController(orderService, log),
		Admin:        controllers.NewAdminController(services.NewUserService(db), orderService, log),
		RequireAuth:  middlewares.RequireAuth(sessions),
		RequireAdmin: middlewares.RequireAdmin(),
		AuthLimiter:  limiter.Handler(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown did not complete")
	}
	scheduler.Stop(ctx)
	if err := notifier.Stop(ctx); err != nil {
		log.WithError(err).Warn("Pending emails abandoned")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}
