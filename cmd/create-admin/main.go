package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/docs-platform-api/internal/repository"
	"github.com/noah-isme/docs-platform-api/internal/service"
	"github.com/noah-isme/docs-platform-api/pkg/config"
	"github.com/noah-isme/docs-platform-api/pkg/database"
	"github.com/noah-isme/docs-platform-api/pkg/logger"
)

// create-admin seeds an admin account so the editor can log in.
func main() {
	username := flag.String("username", "", "admin username")
	password := flag.String("password", "", "admin password (falls back to ADMIN_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if strings.TrimSpace(*username) == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	authSvc := service.NewAuthService(repository.NewAdminRepository(db), nil, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		BcryptCost:        cfg.Auth.BcryptCost,
	}, service.StoreConfig{QueryTimeout: cfg.Database.QueryTimeout})

	admin, err := authSvc.Register(ctx, strings.TrimSpace(*username), *password)
	if err != nil {
		logr.Error("failed to create admin", zap.Error(err))
		os.Exit(1)
	}
	fmt.Printf("created admin %q (id %d)\n", admin.Username, admin.ID)
}
