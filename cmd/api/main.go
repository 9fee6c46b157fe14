package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"profile-auth/internal/config"
	"profile-auth/internal/db"
	"profile-auth/internal/email"
	apihttp "profile-auth/internal/http"
	"profile-auth/internal/logger"
	"profile-auth/internal/repository"
	"profile-auth/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer zl.Sync()

	var profileRepo repository.ProfileRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			zl.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		profileRepo = repository.NewPgProfileRepository(pool)
	} else {
		zl.Warn("DATABASE_URL not set, using in-memory profile store")
		profileRepo = repository.NewMemoryProfileRepository()
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS, cfg.ConfirmationURL)
		if err != nil {
			zl.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	logOnWindow := time.Duration(cfg.LogOnWindowMinutes) * time.Minute
	throttle := service.NewLogOnThrottle(logOnWindow, cfg.LogOnMaxFailures)
	revoked := service.NewMemoryRevokedTokenStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			zl.Warn("redis ping failed, using in-memory session state", zap.Error(err))
		} else {
			throttle = service.NewRedisLogOnThrottle(redisClient, logOnWindow, cfg.LogOnMaxFailures)
			revoked = service.NewRedisRevokedTokenStore(redisClient)
		}
		cancel()
		defer redisClient.Close()
	}

	if cfg.JWTSecret == "" {
		zl.Warn("jwt secret not configured")
	}
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		cfg.JWTIssuer,
		time.Duration(cfg.JWTSessionTTLMinutes)*time.Minute,
		revoked,
	)

	hasher := service.BcryptHasher{Cost: cfg.BcryptCost}
	profileSvc := service.NewProfileService(zl, profileRepo, hasher, emailSender)
	authSvc := service.NewAuthenticationService(zl, profileRepo, hasher, jwtSvc, throttle, service.AuthOptions{
		AllowUnconfirmedLogin: cfg.AllowUnconfirmedLogin,
	})

	router := apihttp.NewRouter(
		zl,
		apihttp.NewProfileHandler(zl, profileSvc),
		apihttp.NewSessionHandler(zl, authSvc),
		authSvc,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zl.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
}
