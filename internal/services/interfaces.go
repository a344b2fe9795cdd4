package services

import (
	"context"
	"time"

	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/intelmarket/gestor-pav/internal/models"
)

// EntityEnricherInterface enriches a single company record
type EntityEnricherInterface interface {
	// Enrich runs the enrichment stages for one entity
	Enrich(ctx context.Context, entity models.Entity) (*models.EnrichEntityResponse, error)

	// Health returns service health status
	Health() map[string]interface{}
}

// BatchServiceInterface processes a batch of entities
type BatchServiceInterface interface {
	// Process enriches every entity and builds the batch response
	Process(ctx context.Context, entities []models.Entity) (*models.BatchResponse, error)
}

// CacheServiceInterface defines the interface for cache service
type CacheServiceInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Exists(ctx context.Context, key string) (bool, error)
	GetStats(ctx context.Context) (map[string]interface{}, error)
	Health() map[string]interface{}
}

// ChatCompleter issues JSON-mode chat completions
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, p llm.Prompt) (*llm.Completion, error)
	Model() string
	Configured() bool
}

// UsageRecorder persists LLM usage
type UsageRecorder interface {
	Record(ctx context.Context, r UsageRecord) error
}

// JobTracker persists the progress of one enrichment job
type JobTracker interface {
	Start(ctx context.Context, job JobRecord) error
	Advance(ctx context.Context, id string, progresso int, etapa string, completas []string) error
	Complete(ctx context.Context, id string, completas []string, duration time.Duration, custo float64) error
	Fail(ctx context.Context, id string, failure string, duration time.Duration) error
}
