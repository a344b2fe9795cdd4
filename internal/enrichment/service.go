package enrichment

import (
	"context"
	"time"

	"github.com/intelmarket/gestor-pav/internal/metrics"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/sirupsen/logrus"
)

// Enricher enriches a single entity
type Enricher interface {
	Enrich(ctx context.Context, entity models.Entity) (map[string]any, error)
}

// BatchService orchestrates a batch: schedule, compare, aggregate
type BatchService struct {
	scheduler *Scheduler
	enricher  Enricher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewBatchService creates a batch service
func NewBatchService(scheduler *Scheduler, enricher Enricher, logger logrus.FieldLogger) *BatchService {
	return &BatchService{
		scheduler: scheduler,
		enricher:  enricher,
		logger:    logger,
		now:       time.Now,
	}
}

// Process enriches entities and builds the batch response. Individual
// failures are reported inside the response; an error means the batch as a
// whole could not be completed.
func (s *BatchService) Process(ctx context.Context, entities []models.Entity) (*models.BatchResponse, error) {
	start := s.now()

	outcomes, err := s.scheduler.Run(ctx, entities, s.enricher.Enrich)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	warnings := DetectIdenticalProducts(outcomes)

	elapsed := s.now().Sub(start)
	resp, err := Aggregate(entities, outcomes, warnings, elapsed)
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.BatchesTotal.WithLabelValues("completed").Inc()
	metrics.BatchEntitiesTotal.WithLabelValues(string(models.StatusFulfilled)).Add(float64(resp.Summary.Sucessos))
	metrics.BatchEntitiesTotal.WithLabelValues(string(models.StatusRejected)).Add(float64(resp.Summary.Falhas))
	metrics.SimilarityWarningsTotal.Add(float64(len(warnings)))
	metrics.BatchDuration.Observe(elapsed.Seconds())

	for i, r := range resp.Resultados {
		if r.Error != nil {
			s.logger.WithFields(logrus.Fields{
				"index":   i,
				"empresa": r.Empresa,
				"error":   *r.Error,
			}).Warn("Entity enrichment failed")
		}
	}
	for _, w := range warnings {
		s.logger.WithFields(logrus.Fields{
			"empresas": w.Empresas,
			"tipo":     w.Tipo,
		}).Warn("Similar enrichment results detected")
	}

	s.logger.WithFields(logrus.Fields{
		"total":       resp.Summary.Total,
		"sucessos":    resp.Summary.Sucessos,
		"falhas":      resp.Summary.Falhas,
		"avisos":      resp.Summary.Avisos,
		"duration_ms": resp.Summary.Duration,
	}).Info("Batch enrichment completed")

	return resp, nil
}
