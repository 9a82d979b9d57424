package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clearcrm/authz/internal/app"
	"github.com/clearcrm/authz/internal/config"
	"github.com/clearcrm/authz/internal/infra/http"
	"github.com/clearcrm/authz/internal/infra/http/handler"
	"github.com/clearcrm/authz/internal/infra/postgres"
	"github.com/clearcrm/authz/internal/infra/redis"
	"github.com/clearcrm/authz/pkg/domain/accesscontrol"
	"github.com/clearcrm/authz/pkg/jwt"
	"github.com/clearcrm/authz/pkg/logger"
	"github.com/clearcrm/authz/pkg/validator"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log := logger.NewDefault()
		log.Error("failed to load configuration", "error", err)
		return 1
	}

	log := initLogger(cfg)
	log.Info("starting application", "app", cfg.App.Name, "env", cfg.App.Env)

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer closeWithLog(db, "database", log)
	log.Info("database connected")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(&cfg.Redis, log)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			return 1
		}
		defer closeWithLog(redisClient, "redis", log)
	} else {
		log.Warn("redis disabled, snapshot caching bypassed")
	}

	// Repositories
	membershipRepo := postgres.NewMembershipRepository(db)
	customRoleRepo := postgres.NewCustomRoleRepository(db)
	grantRepo := postgres.NewGrantRepository(db)
	orgRepo := postgres.NewOrgRepository(db)

	// Resolution engine
	roleResolver := accesscontrol.NewRoleResolver(membershipRepo, customRoleRepo, grantRepo)
	visibilityResolver := accesscontrol.NewVisibilityResolver(orgRepo)
	assignmentResolver := accesscontrol.NewAssignmentResolver(app.NewOrgAssignmentAuthority(orgRepo))

	snapshots, err := app.NewPermissionCacheService(redisClient, roleResolver, cfg.Cache.SnapshotTTL, log)
	if err != nil {
		log.Error("failed to initialize snapshot cache", "error", err)
		return 1
	}

	authzService, err := app.NewAuthorizationService(
		snapshots,
		visibilityResolver,
		assignmentResolver,
		app.WithAuthorizationLogger(log),
	)
	if err != nil {
		log.Error("failed to initialize authorization service", "error", err)
		return 1
	}
	log.Info("authorization service initialized")

	// HTTP server
	tokens := jwt.NewGenerator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	server := http.NewServer(cfg, tokens, log)

	authzHandler := handler.NewAuthzHandler(authzService, validator.New(), log)
	pingers := []http.Pinger{db}
	if redisClient != nil {
		pingers = append(pingers, redisClient)
	}
	server.RegisterRoutes(authzHandler, pingers...)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", "error", err)
		}
	}()
	log.Info("application started", "http_addr", cfg.Server.Addr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		return 1
	}

	log.Info("application stopped")
	return 0
}

func initLogger(cfg *config.Config) *logger.Logger {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment()
	}
	return logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

type closer interface {
	Close() error
}

func closeWithLog(c closer, name string, log *logger.Logger) {
	if err := c.Close(); err != nil {
		log.Error("failed to close "+name, "error", err)
	}
}
