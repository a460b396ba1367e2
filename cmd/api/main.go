package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-contacts-api/internal/core/auth"
	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/core/config"
	"go-contacts-api/internal/core/database"
	"go-contacts-api/internal/core/logger"
	"go-contacts-api/internal/core/server"
	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/repo"
	"go-contacts-api/internal/service"
	"go-contacts-api/internal/service/avatar"
	"go-contacts-api/internal/service/mail"
	"go-contacts-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Enable:     cfg.Log.Rotate.Enable,
		Filename:   cfg.Log.Rotate.Filename,
		MaxSizeMB:  cfg.Log.Rotate.MaxSizeMB,
		MaxBackups: cfg.Log.Rotate.MaxBackups,
		MaxAgeDays: cfg.Log.Rotate.MaxAgeDays,
		Compress:   cfg.Log.Rotate.Compress,
	})
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Contact{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// JWT
	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshTokenTTLDay) * 24 * time.Hour,
		EmailTTL:   time.Duration(cfg.JWT.EmailTokenTTLDay) * 24 * time.Hour,
	}

	// Redis：用户缓存 + 按用户限速共用一个连接
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	mailer, err := mail.New(cfg.Mail, cfg.App.BaseURL)
	if err != nil {
		log.Fatal("mailer init", zap.Error(err))
	}
	uploader, err := avatar.New(cfg.Cloudinary)
	if err != nil {
		log.Fatal("cloudinary init", zap.Error(err))
	}

	userRepo := repo.NewUserRepo(db)
	contactRepo := repo.NewContactRepo(db)

	authSvc := service.NewAuthService(userRepo, jwter, rc, mailer,
		time.Duration(cfg.Redis.UserTTLSec)*time.Second, log)
	userSvc := service.NewUserService(userRepo, uploader, authSvc)
	contactSvc := service.NewContactService(contactRepo)

	r := router.NewAPIEngine(router.Deps{
		Log:      log,
		Cfg:      cfg,
		RDB:      rc.RDB,
		Auth:     authSvc,
		Users:    userSvc,
		Contacts: contactSvc,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.Build(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("contacts api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("contacts api start FAILED", zap.Error(err))
		}
	}()
	log.Info("contacts api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("contacts api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
