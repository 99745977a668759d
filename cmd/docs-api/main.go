package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/docs-platform-api/api/swagger"
	"github.com/noah-isme/docs-platform-api/internal/handler"
	"github.com/noah-isme/docs-platform-api/internal/repository"
	"github.com/noah-isme/docs-platform-api/internal/server"
	"github.com/noah-isme/docs-platform-api/internal/service"
	"github.com/noah-isme/docs-platform-api/pkg/config"
	"github.com/noah-isme/docs-platform-api/pkg/database"
	"github.com/noah-isme/docs-platform-api/pkg/logger"
)

// @title DevOps Documentation API
// @version 1.0.0
// @description Hierarchical documentation and learning modules with an admin editor.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	if err := metrics.RegisterDBStats(db.DB, cfg.Database.Name); err != nil {
		logr.Warn("failed to register db stats collector", zap.Error(err))
	}

	validate := validator.New()
	storeCfg := service.StoreConfig{QueryTimeout: cfg.Database.QueryTimeout}

	documentSvc := service.NewDocumentService(repository.NewDocumentRepository(db), db, metrics, validate, logr, storeCfg)
	moduleSvc := service.NewModuleService(repository.NewModuleRepository(db), db, metrics, validate, logr, storeCfg)
	authSvc := service.NewAuthService(repository.NewAdminRepository(db), metrics, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		BcryptCost:        cfg.Auth.BcryptCost,
	}, storeCfg)

	router := server.NewRouter(server.Dependencies{
		Config:     cfg,
		Logger:     logr,
		Authorizer: authSvc,
		Metrics:    metrics,
		Auth:       handler.NewAuthHandler(authSvc),
		Documents:  handler.NewDocumentHandler(documentSvc),
		Modules:    handler.NewModuleHandler(moduleSvc),
		System:     handler.NewSystemHandler(db, metrics.Handler()),
	})

	srv := server.NewHTTPServer(fmt.Sprintf(":%d", cfg.Port), router)
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logr.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
