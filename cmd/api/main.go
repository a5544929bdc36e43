package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/placereviews/docs" // Swagger docs (generated)
	"github.com/redmonkez12/placereviews/internal/auth"
	"github.com/redmonkez12/placereviews/internal/config"
	"github.com/redmonkez12/placereviews/internal/database"
	httpServer "github.com/redmonkez12/placereviews/internal/http"
	"github.com/redmonkez12/placereviews/internal/logging"
	"github.com/redmonkez12/placereviews/internal/metrics"
	"github.com/redmonkez12/placereviews/internal/place"
	"github.com/redmonkez12/placereviews/internal/ratelimit"
	"github.com/redmonkez12/placereviews/internal/review"
	"github.com/redmonkez12/placereviews/internal/user"
)

// @title           Place Reviews API
// @version         1.0
// @description     Reviews and places API with password and Google sign-in.

// @host      localhost:8000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"token_format", cfg.Auth.TokenFormat,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	var rateLimiter auth.RateLimiter
	if cfg.Redis.Enabled {
		redisClient, err := initRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	authService := auth.NewService(
		repos.users,
		auth.NewArgon2Hasher(),
		tokenService,
		auth.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientID, cfg.Auth.GoogleJWKSURL),
		collector,
		logger,
	)

	if cfg.Auth.SeedUserEmail != "" {
		created, err := authService.EnsureUser(ctx, cfg.Auth.SeedUserEmail, cfg.Auth.SeedUserPassword)
		if err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		logger.Info("seed user ready", "email", cfg.Auth.SeedUserEmail, "created", created)
	}

	router := httpServer.NewRouter(cfg, httpServer.Handlers{
		Auth:           auth.NewHandler(authService, rateLimiter, logger),
		AuthMiddleware: auth.NewMiddleware(authService),
		Reviews:        review.NewHandler(review.NewService(repos.reviews, collector, logger)),
		Places:         place.NewHandler(place.NewService(repos.places, collector, logger)),
		Metrics:        collector,
		Gatherer:       registry,
	}, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

type stores struct {
	users   user.Repository
	reviews review.Repository
	places  place.Repository
	close   func()
}

// openStores connects the configured backend and builds its repositories.
func openStores(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)

		users := user.NewMongoRepository(db.Collection(cfg.Mongo.UsersCollection))
		if err := users.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		return &stores{
			users:   users,
			reviews: review.NewMongoRepository(db.Collection(database.ReviewsCollection), logger),
			places:  place.NewMongoRepository(db.Collection(database.PlacesCollection), logger),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Warn("failed to disconnect mongo", "error", err.Error())
				}
			},
		}, nil

	case config.StorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database.ConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.CreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}

		return &stores{
			users:   user.NewBunRepository(db),
			reviews: review.NewBunRepository(db),
			places:  place.NewBunRepository(db),
			close:   func() { db.Close() },
		}, nil

	default:
		logger.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:   user.NewMemoryRepository(),
			reviews: review.NewMemoryRepository(),
			places:  place.NewMemoryRepository(),
			close:   func() {},
		}, nil
	}
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatPaseto {
		svc, err := auth.NewPasetoService(cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		return svc, nil
	}

	svc, err := auth.NewJWTService(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
