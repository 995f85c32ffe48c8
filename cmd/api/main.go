package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cesizen/internal/config"
	"cesizen/internal/db"
	apihttp "cesizen/internal/http"
	"cesizen/internal/repository"
	"cesizen/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	eventRepo := repository.NewPgStressEventRepository(pool)
	resultRepo := repository.NewPgDiagnosticResultRepository(pool)
	articleRepo := repository.NewPgArticleRepository(pool)

	loginWindow := time.Duration(cfg.LoginWindowMinutes) * time.Minute
	loginLimiter := service.NewLoginRateLimiter(loginWindow, cfg.LoginMaxAttempts)
	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, loginWindow, cfg.LoginMaxAttempts)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, cfg.BcryptCost)
	diagSvc := service.NewDiagnosticService(logger, eventRepo, resultRepo, userRepo)
	articleSvc := service.NewArticleService(logger, articleRepo)

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc, loginLimiter)
	profileHandler := apihttp.NewProfileHandler(logger, userSvc)
	diagHandler := apihttp.NewDiagnosticHandler(logger, diagSvc)
	articleHandler := apihttp.NewArticleHandler(logger, articleSvc)
	adminHandler := apihttp.NewAdminHandler(logger, userSvc)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, profileHandler, diagHandler, articleHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
