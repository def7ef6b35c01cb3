package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/db/redis"
	myHttp "github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/auth/service"
	userservice "github.com/Miraines/MoonyAndStarry/blog-auth/internal/app/user/service"
	repo "github.com/Miraines/MoonyAndStarry/blog-auth/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/blog-auth/internal/infra/server"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel)
	defer zapLog.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(gormPostgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	checks := map[string]myHttp.HealthCheck{"postgres": sqlDB.PingContext}

	// without Redis the login lockout is off
	var attempts repo.AttemptRepo
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		attemptRepo := myRedisRepo.NewRedisAttemptRepo(redisCli)
		attempts = attemptRepo
		checks["redis"] = attemptRepo.Ping
	} else {
		zapLog.Warn("REDIS_ADDRESS is empty, login lockout disabled")
	}

	hasher, err := password.New(cfg.PasswordPepper)
	if err != nil {
		zapLog.Fatal("failed to init password hasher", zap.Error(err))
	}
	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	validate := dto.NewValidator()
	userRepo := postgres.NewPostgresUserRepo(db)
	authSvc := appsvc.New(userRepo, attempts, jwtUtil, hasher, cfg, validate, zapLog)
	userSvc := userservice.New(userRepo, hasher, validate)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, "postgres"),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(rootCtx)

	handler := myHttp.NewHandler(authSvc, userSvc, checks, zapLog)
	router := myHttp.NewRouter(ctx, cfg, handler, reg, zapLog)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg, router, zapLog)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("shutdown complete")
}
