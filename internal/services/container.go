package services

import (
	"context"
	"fmt"
	"time"

	"github.com/intelmarket/gestor-pav/internal/config"
	"github.com/intelmarket/gestor-pav/internal/enrichment"
	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Container holds all service dependencies
type Container struct {
	config        *config.Config
	logger        *logrus.Logger
	redisClient   *redis.Client
	usageStore    *UsageStore
	jobStore      *JobStore
	cleanupCancel context.CancelFunc

	CacheService   CacheServiceInterface
	EntityEnricher EntityEnricherInterface
	BatchService   BatchServiceInterface
	LLM            ChatCompleter
}

// NewContainer creates a new service container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	container.initRedis()
	container.initUsageStore()

	if err := container.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return container, nil
}

// initRedis connects to Redis. The cache runs from memory when it is unreachable.
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.WithField("error", err.Error()).Warn("Redis connection failed, running with memory cache")
		_ = c.redisClient.Close()
		c.redisClient = nil
	} else {
		c.logger.Info("Redis connection established")
	}
}

// initUsageStore opens the usage ledger and job tracking when DATABASE_URL is set
func (c *Container) initUsageStore() {
	if c.config.Database.URL == "" {
		c.logger.Info("DATABASE_URL not set, LLM usage will not be persisted")
		return
	}

	store, err := OpenUsageStore(c.config.Database)
	if err != nil {
		c.logger.WithField("error", err.Error()).Warn("Usage store disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		c.logger.WithField("error", err.Error()).Warn("PostgreSQL connection failed, usage store disabled")
		_ = store.Close()
		return
	}

	c.usageStore = store
	c.jobStore = NewJobStore(store.db)
	c.logger.Info("PostgreSQL connection established")
}

// initServices initializes all services
func (c *Container) initServices() error {
	cache := NewCacheService(c.redisClient, c.config.Enrichment.CacheTTL, c.logger)
	ctx, cancel := context.WithCancel(context.Background())
	cache.StartCleanupRoutine(ctx, 5*time.Minute)
	c.cleanupCancel = cancel
	c.CacheService = cache

	client := llm.NewClient(llm.Config{
		APIKey:     c.config.OpenAI.APIKey,
		BaseURL:    c.config.OpenAI.BaseURL,
		Model:      c.config.OpenAI.Model,
		Timeout:    c.config.OpenAI.Timeout,
		MaxRetries: c.config.OpenAI.MaxRetries,
	}, c.logger)
	if !client.Configured() {
		c.logger.Warn("OPENAI_API_KEY not set, single entity enrichment will be unavailable")
	}
	c.LLM = client

	// a nil store must not become a non-nil interface
	var usage UsageRecorder
	var jobs JobTracker
	if c.usageStore != nil {
		usage = c.usageStore
		jobs = c.jobStore
	}

	enricher, err := NewEntityEnricher(client, cache, usage, jobs, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize entity enricher: %w", err)
	}
	c.EntityEnricher = enricher

	c.BatchService = enrichment.NewBatchService(
		enrichment.NewScheduler(c.config.Enrichment.BatchSize, c.config.Enrichment.BatchDelay, c.logger),
		enrichment.NewEntityClient(nil, c.config.Enrichment.EntityURL, c.config.Enrichment.CallTimeout),
		c.logger,
	)

	return nil
}

// Close closes all service connections
func (c *Container) Close() error {
	var errors []error

	if c.cleanupCancel != nil {
		c.cleanupCancel()
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.usageStore != nil {
		if err := c.usageStore.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close PostgreSQL: %w", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errors)
	}

	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	if c.CacheService != nil {
		health["redis"] = c.CacheService.Health()
	}

	if c.usageStore != nil {
		health["postgres"] = c.usageStore.Health()
	} else {
		health["postgres"] = map[string]interface{}{"status": "disabled"}
	}

	if c.EntityEnricher != nil {
		health["llm"] = c.EntityEnricher.Health()
	}

	return health
}

// Batch returns the batch enrichment service
func (c *Container) Batch() BatchServiceInterface {
	return c.BatchService
}

// Enricher returns the single entity enricher
func (c *Container) Enricher() EntityEnricherInterface {
	return c.EntityEnricher
}

// Cache returns the cache service
func (c *Container) Cache() CacheServiceInterface {
	return c.CacheService
}
