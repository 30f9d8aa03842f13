package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "bugscape/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bugscape/internal/auth"
	"bugscape/internal/cache"
	"bugscape/internal/config"
	"bugscape/internal/db"
	"bugscape/internal/handler"
	"bugscape/internal/logging"
	"bugscape/internal/middleware"
	"bugscape/internal/repository"
	"bugscape/internal/repository/memory"
	"bugscape/internal/repository/mongodb"
	"bugscape/internal/router"
	"bugscape/internal/service"
	"bugscape/internal/telemetry"
)

const serviceName = "bugscape"

// @title Bugscape API
// @version 1.0
// @description Session-based authentication and account management for the Bugscape issue tracker.
// @host localhost:8080
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()

	shutdownTelemetry := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint, cfg.OTLPInsecure, logger)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "store init failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer stores.close()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	var loginCounter middleware.Counter = cacheClient
	if cacheClient == nil {
		loginCounter = middleware.NewMemoryCounter()
	} else if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unavailable, using in-process rate limiting and no user cache", "addr", cfg.RedisAddr, "error", err)
		_ = cacheClient.Close()
		cacheClient = nil
		loginCounter = middleware.NewMemoryCounter()
	}
	defer cacheClient.Close()

	accessKeys, refreshKeys, err := loadKeys(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "token keys invalid", "error", err)
		os.Exit(1)
	}

	jwtService := auth.NewJWTService(accessKeys, refreshKeys, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := auth.NewArgon2Hasher(auth.DefaultArgon2Params, logger)

	sessionService := service.NewSessionService(stores.users, stores.sessions, hasher, jwtService, logger)
	userService := service.NewUserService(service.UserServiceDeps{
		Repo:    stores.users,
		Hasher:  hasher,
		Cache:   cacheClient,
		Mailer:  service.NewLogMailer(logger),
		BaseURL: cfg.BaseURL,
		Logger:  logger,
	})

	cookies := handler.CookieConfig{
		Secure: cfg.CookieSecure,
		Domain: cfg.CookieDomain,
		MaxAge: jwtService.RefreshTTL(),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		Config:         cfg,
		Logger:         logger,
		Verifier:       jwtService,
		LoginCounter:   loginCounter,
		SessionHandler: handler.NewSessionHandler(sessionService, cookies),
		UserHandler:    handler.NewUserHandler(userService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(e, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server listening", "addr", server.Addr, "store", cfg.StoreDriver, "swagger", swaggerURL(cfg))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "graceful shutdown failed", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn(ctx, "telemetry shutdown failed", "error", err)
	}
	logger.Info(ctx, "server stopped")
}

type storeSet struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger logging.Logger) (*storeSet, error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(gormDB); err != nil {
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		closeFn := func() {}
		if sqlDB, err := gormDB.DB(); err == nil {
			closeFn = func() { _ = sqlDB.Close() }
		}
		return &storeSet{
			users:    repository.NewUserRepository(gormDB),
			sessions: repository.NewSessionRepository(gormDB),
			close:    closeFn,
		}, nil

	case config.StoreMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storeSet{
			users:    mongodb.NewUserRepository(database),
			sessions: mongodb.NewSessionRepository(database),
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.StoreMemory:
		logger.Warn(ctx, "using in-memory store, data is lost on restart")
		return &storeSet{
			users:    memory.NewUserRepository(),
			sessions: memory.NewSessionRepository(),
			close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// loadKeys parses the configured key pairs. Without any key material it
// generates throwaway keys so local runs work; tokens then die with the process.
func loadKeys(ctx context.Context, cfg *config.Config, logger logging.Logger) (auth.KeyPair, auth.KeyPair, error) {
	access, accessErr := auth.ParseKeyPair(cfg.AccessTokenPrivateKey, cfg.AccessTokenPublicKey)
	refresh, refreshErr := auth.ParseKeyPair(cfg.RefreshTokenPrivateKey, cfg.RefreshTokenPublicKey)

	if errors.Is(accessErr, auth.ErrNoKeyMaterial) && errors.Is(refreshErr, auth.ErrNoKeyMaterial) {
		logger.Warn(ctx, "no token keys configured, generating ephemeral keys")
		var err error
		if access, err = auth.GenerateKeyPair(2048); err != nil {
			return auth.KeyPair{}, auth.KeyPair{}, err
		}
		if refresh, err = auth.GenerateKeyPair(2048); err != nil {
			return auth.KeyPair{}, auth.KeyPair{}, err
		}
		return access, refresh, nil
	}
	if accessErr != nil {
		return auth.KeyPair{}, auth.KeyPair{}, fmt.Errorf("access token keys: %w", accessErr)
	}
	if refreshErr != nil {
		return auth.KeyPair{}, auth.KeyPair{}, fmt.Errorf("refresh token keys: %w", refreshErr)
	}
	return access, refresh, nil
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
