package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "loantrack/internal/adapter/http"
	"loantrack/internal/adapter/middleware"
	repo "loantrack/internal/adapter/repository/mysql"
	"loantrack/internal/config"
	"loantrack/internal/infrastructure/cache"
	"loantrack/internal/infrastructure/db"
	"loantrack/internal/infrastructure/logger"
	"loantrack/internal/infrastructure/notify"
	appuc "loantrack/internal/usecase/application"
	identityuc "loantrack/internal/usecase/identity"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(cfg, log)
	if err != nil {
		log.Fatal("open database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(ctx, cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		log.Fatal("connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	var events appuc.EventPublisher = notify.NewLogPublisher(log)
	if cfg.SNSTopicARN != "" {
		sns, err := notify.NewSNSPublisher(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
		if err != nil {
			log.Fatal("init sns publisher", zap.Error(err))
		}
		events = sns
	}

	users := identityuc.NewService(repo.NewUserRepository(gdb), identityuc.NewTokens(cfg.JWTSecret, cfg.TokenTTL), log)
	if cfg.SeedAdminEmail != "" {
		if _, err := users.EnsureAdmin(ctx, identityuc.RegisterInput{
			Name:     cfg.SeedAdminName,
			Email:    cfg.SeedAdminEmail,
			Password: cfg.SeedAdminPassword,
		}); err != nil {
			log.Fatal("seed admin", zap.Error(err))
		}
	}

	manager := appuc.NewManager(
		repo.NewApplicationRepository(gdb),
		repo.NewDecisionRepository(gdb),
		repo.NewGormUoW(gdb),
		users,
		events,
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestLogger(log), middleware.Metrics())

	httpadp.RegisterRoutes(e, httpadp.Routes{
		Health:         httpadp.NewHandler(dbCheck(gdb), redisCheck(rdb)),
		Auth:           httpadp.NewAuthHandler(users, log),
		Applications:   httpadp.NewApplicationHandler(manager, log),
		Resolver:       users,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		AuthLimiter:    middleware.NewRateLimiter(cfg.AuthRatePerSec, cfg.AuthRateBurst),
		Log:            log,
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func openDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return db.OpenSQLite(cfg.SQLitePath, log)
	}
	return db.OpenGorm(cfg.MySQLDSN(), log)
}

func dbCheck(gdb *gorm.DB) httpadp.Check {
	return httpadp.Check{Name: "database", Fn: func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func redisCheck(rdb *redis.Client) httpadp.Check {
	return httpadp.Check{Name: "redis", Fn: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}
