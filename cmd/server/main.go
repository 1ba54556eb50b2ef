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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/api"
	"github.com/lalith-99/happythoughts/internal/cache"
	"github.com/lalith-99/happythoughts/internal/config"
	"github.com/lalith-99/happythoughts/internal/db"
	"github.com/lalith-99/happythoughts/internal/observ"
	"github.com/lalith-99/happythoughts/internal/repository"
	mongostore "github.com/lalith-99/happythoughts/internal/repository/mongo"
	"github.com/lalith-99/happythoughts/internal/repository/postgres"
	"github.com/lalith-99/happythoughts/internal/service"
	"github.com/lalith-99/happythoughts/internal/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stores is the backend picked by STORE_DRIVER.
type stores struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		m, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		return &stores{
			messages: mongostore.NewMessageStore(m.Collection(db.MessagesCollection)),
			users:    mongostore.NewUserStore(m.Collection(db.UsersCollection)),
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				m.Close(ctx)
			},
		}, nil
	default:
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pool := database.Pool()
		return &stores{
			messages: postgres.NewMessageStore(pool),
			users:    postgres.NewUserStore(pool),
			close:    database.Close,
		}, nil
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config. A .env file is optional.
	// ---------------------------------------------------------------
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("could not read .env", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Connect to the store
	// ---------------------------------------------------------------
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// ---------------------------------------------------------------
	// 4. Optional token cache
	//
	// Left as a nil interface when REDIS_URL is unset so the resolver
	// skips it entirely.
	// ---------------------------------------------------------------
	var tokenCache service.TokenCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		tokenCache = cache.NewTokenCache(client, cfg.TokenCacheTTL)
		logger.Info("token cache enabled", zap.Duration("ttl", cfg.TokenCacheTTL))
	}

	// ---------------------------------------------------------------
	// 5. Services and handlers
	// ---------------------------------------------------------------
	val := validator.New()
	resolver := service.NewResolver(st.users, tokenCache, logger)
	messageSvc := service.NewMessageService(st.messages, val, cfg.MessageMinLength, cfg.MessageMaxLength, logger)
	likeEngine := service.NewLikeEngine(st.messages, resolver, logger)
	userSvc := service.NewUserService(st.users, val, cfg.TokenSecret, logger)

	gin.SetMode(observ.GinMode(cfg.Env))
	router := api.NewRouter(api.RouterDeps{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Resolver:    resolver,
		Messages:    api.NewMessageHandler(messageSvc, likeEngine, logger),
		Users:       api.NewUserHandler(userSvc, logger),
		Health:      messageSvc,
	})

	// ---------------------------------------------------------------
	// 6. Serve until SIGINT/SIGTERM, then drain.
	// ---------------------------------------------------------------
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting happythoughts",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
