// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-linksports/internal/auth"
	"github.com/iyunix/go-linksports/internal/config"
	"github.com/iyunix/go-linksports/internal/database"
	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/handlers"
	"github.com/iyunix/go-linksports/internal/metrics"
	"github.com/iyunix/go-linksports/internal/ratelimit"
	"github.com/iyunix/go-linksports/internal/repository/audit"
	"github.com/iyunix/go-linksports/internal/repository/connection"
	"github.com/iyunix/go-linksports/internal/repository/contact"
	"github.com/iyunix/go-linksports/internal/repository/post"
	"github.com/iyunix/go-linksports/internal/repository/profile"
	"github.com/iyunix/go-linksports/internal/repository/sport"
	"github.com/iyunix/go-linksports/internal/repository/user"
	"github.com/iyunix/go-linksports/internal/services"
	"github.com/iyunix/go-linksports/internal/services/admin_services"
	"github.com/iyunix/go-linksports/internal/services/delivery"
	"github.com/iyunix/go-linksports/internal/services/mail"
	"github.com/iyunix/go-linksports/internal/services/profile_services"
	"github.com/iyunix/go-linksports/internal/services/sms"
	"github.com/iyunix/go-linksports/internal/services/social_services"
	"github.com/iyunix/go-linksports/internal/services/sport_services"
	"github.com/iyunix/go-linksports/internal/services/user_services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The configured logger needs the config; fall back to the env-based one.
		services.NewLogger("linksports").Error("config load failed", "error", err)
		os.Exit(1)
	}

	logger, err := services.NewZapLogger(services.LoggerOptions{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("Logger Error: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	restoreStdLog := logger.RedirectStdLog()
	defer restoreStdLog()

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	senders, err := buildSenders(cfg, logger)
	if err != nil {
		log.Fatalf("Delivery Error: %v", err)
	}

	m := metrics.New()
	queue := delivery.NewQueue(delivery.QueueConfig{
		Workers: cfg.DeliveryWorkers,
		Size:    cfg.DeliveryQueueSize,
	}, senders, logger.Named("delivery")).WithObserver(m)
	queueCtx, stopQueue := context.WithCancel(ctx)
	defer stopQueue()
	queue.Start(queueCtx)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	router, err := buildRouter(cfg, db, queue, m, authLimiter, logger)
	if err != nil {
		log.Fatalf("Startup Error: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", srv.Addr,
			"env", cfg.Environment,
			"db_driver", cfg.DBDriver,
			"connection_policy", cfg.ConnectionPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Error("delivery queue did not drain", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped")
}

// buildSenders picks the gateway for each channel. Outside production an
// unconfigured gateway falls back to writing codes to the log.
func buildSenders(cfg *config.Config, logger *services.ZapLogger) (map[domain.ContactType]delivery.Sender, error) {
	senders := make(map[domain.ContactType]delivery.Sender, 2)

	mailCfg := mail.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}
	switch {
	case mailCfg.Configured():
		senders[domain.ContactEmail] = mail.NewSMTPSender(mailCfg)
	case cfg.IsProduction():
		return nil, errors.New("SMTP_HOST is required in production")
	default:
		senders[domain.ContactEmail] = mail.NewLogSender(logger.Named("mail"))
	}

	smsCfg := &sms.Config{
		AccessKey:  cfg.SMS.AccessKey,
		TemplateID: cfg.SMS.TemplateID,
		APIURL:     cfg.SMS.APIURL,
		Timeout:    15 * time.Second,
	}
	switch {
	case smsCfg.Configured():
		senders[domain.ContactPhone] = sms.NewSMSIRProvider(smsCfg)
	case cfg.IsProduction():
		if err := smsCfg.Validate(); err != nil {
			return nil, err
		}
	default:
		senders[domain.ContactPhone] = sms.NewLogProvider(logger.Named("sms"))
	}
	return senders, nil
}

func buildRouter(cfg *config.Config, db *gorm.DB, queue *delivery.Queue, m *metrics.Metrics, authLimiter *ratelimit.MemoryRateLimiter, logger *services.ZapLogger) (http.Handler, error) {
	policy, err := social_services.PolicyByName(cfg.ConnectionPolicy)
	if err != nil {
		return nil, err
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	contactRepo := contact.NewGormContactRepository(db)
	sportRepo := sport.NewGormSportRepository(db)

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.JWTSecretKey, cfg.JWTTTL)
	verification := user_services.NewVerificationService(contactRepo, queue, logger.Named("verification"),
		user_services.WithLocation(cfg.Location()),
		user_services.WithObserver(m))
	authService := user_services.NewAuthService(userRepo, verification, tokens, cfg.AdminEmail, logger.Named("auth"))
	profileService := profile_services.NewProfileService(profile.NewGormProfileRepository(db), sportRepo, logger.Named("profile"))
	connectionService := social_services.NewConnectionService(connection.NewGormConnectionRepository(db), userRepo, policy, logger.Named("connection"))
	postService := social_services.NewPostService(post.NewGormPostRepository(db), connectionService, logger.Named("post"))
	sportService := sport_services.NewSportService(sportRepo, logger.Named("sport"))
	adminService := admin_services.NewAdminService(userRepo, contactRepo, audit.NewGormAuditRepository(db), sportService, logger.Named("admin"))

	// --- Handlers ---
	handlerLogger := logger.Named("http")
	return handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, verification, handlerLogger, tokens.TTL(), cfg.IsProduction()),
		Profiles:       handlers.NewProfileHandler(profileService, handlerLogger),
		Connections:    handlers.NewConnectionHandler(connectionService, handlerLogger),
		Posts:          handlers.NewPostHandler(postService, handlerLogger),
		Sports:         handlers.NewSportHandler(sportService, handlerLogger),
		Admin:          handlers.NewAdminHandler(adminService, handlerLogger),
		Logs:           handlers.NewLogHandler(logger.Named("client")),
		Tokens:         tokens,
		Users:          userRepo,
		APILimiter:     ratelimit.NewTokenBucketLimiter(ratelimit.DefaultAPIConfig(), time.Now),
		AuthLimiter:    authLimiter,
		TrustProxy:     cfg.TrustProxy,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Health: func(r *http.Request) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(r.Context()); err != nil {
				return fmt.Errorf("database unreachable: %w", err)
			}
			return nil
		},
		Logger: handlerLogger,
	}), nil
}
