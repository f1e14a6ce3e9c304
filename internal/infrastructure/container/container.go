package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gdugdh24/bandmate-backend/internal/config"
	"github.com/gdugdh24/bandmate-backend/internal/infrastructure/cache"
	"github.com/gdugdh24/bandmate-backend/internal/infrastructure/database"
	"github.com/gdugdh24/bandmate-backend/internal/infrastructure/hasher"
	"github.com/gdugdh24/bandmate-backend/internal/logger"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
	cachedrepo "github.com/gdugdh24/bandmate-backend/internal/repository/cache"
	"github.com/gdugdh24/bandmate-backend/internal/repository/memory"
	"github.com/gdugdh24/bandmate-backend/internal/repository/mongodb"
	"github.com/gdugdh24/bandmate-backend/internal/repository/postgres"
	"github.com/gdugdh24/bandmate-backend/internal/usecase/profile"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logger.Logger
	Mongo    *mongo.Client
	DB       *sqlx.DB
	Redis    *redis.Client
	Profiles *profile.ProfileUseCase

	profileRepo repository.ProfileRepository
}

// NewContainer connects the configured storage and builds the profile use case
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	profileRepo, err := c.newProfileRepository(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			// Cache is optional, continue against storage only
			log.Warn("Redis unavailable, profile cache disabled", "addr", cfg.Redis.GetAddr(), "error", err)
		} else {
			c.Redis = redisClient
			store := cache.NewRedis(redisClient, cfg.Redis.TTL, log)
			profileRepo = cachedrepo.NewProfileRepository(profileRepo, store, log)
		}
	}

	c.profileRepo = profileRepo
	c.Profiles = profile.NewProfileUseCase(
		profileRepo,
		hasher.NewBcrypt(cfg.Password.Cost),
		log,
		cfg.Instruments.MaxRetries,
	)

	log.Info("Container initialized", "storage", cfg.Storage.Type, "cache", c.Redis != nil)
	return c, nil
}

func (c *Container) newProfileRepository(ctx context.Context) (repository.ProfileRepository, error) {
	cfg := c.Config

	switch cfg.Storage.Type {
	case config.StorageMongo:
		client, err := database.NewMongoClient(ctx, &cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongodb: %w", err)
		}
		c.Mongo = client
		return mongodb.NewProfileRepository(client.Database(cfg.Mongo.Database), cfg.Mongo.Collection), nil

	case config.StoragePostgres:
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return postgres.NewProfileRepository(db), nil

	case config.StorageMemory:
		return memory.NewProfileRepository(), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// Migrate prepares the storage schema: indexes for MongoDB, goose migrations for PostgreSQL
func (c *Container) Migrate(ctx context.Context) error {
	migrator, ok := c.profileRepo.(repository.SchemaMigrator)
	if !ok {
		return nil
	}
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s storage: %w", c.Config.Storage.Type, err)
	}
	return nil
}

// Close closes all connections
func (c *Container) Close() error {
	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Error closing Redis", "error", err)
		}
	}

	// Close MongoDB
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(context.Background()); err != nil {
			return fmt.Errorf("failed to disconnect mongodb: %w", err)
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
