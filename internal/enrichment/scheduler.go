package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize  = 3
	DefaultBatchDelay = time.Second
)

// EnrichFunc performs the enrichment of a single entity
type EnrichFunc func(ctx context.Context, entity models.Entity) (map[string]any, error)

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Scheduler runs entities through an EnrichFunc in consecutive groups of at
// most BatchSize. Members of a group run concurrently; groups run one after
// another with Delay between them.
type Scheduler struct {
	BatchSize int
	Delay     time.Duration

	sleep  SleepFunc
	logger logrus.FieldLogger
}

// NewScheduler creates a scheduler. Non-positive batch sizes fall back to the default.
func NewScheduler(batchSize int, delay time.Duration, logger logrus.FieldLogger) *Scheduler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if delay < 0 {
		delay = 0
	}
	return &Scheduler{
		BatchSize: batchSize,
		Delay:     delay,
		sleep:     sleepContext,
		logger:    logger,
	}
}

// WithSleep replaces the pause between groups
func (s *Scheduler) WithSleep(fn SleepFunc) *Scheduler {
	s.sleep = fn
	return s
}

// Run enriches every entity and returns one outcome per entity in input
// order. Per-entity failures are captured as rejected outcomes; the returned
// error is reserved for panics inside fn.
func (s *Scheduler) Run(ctx context.Context, entities []models.Entity, fn EnrichFunc) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, len(entities))
	groups := (len(entities) + s.BatchSize - 1) / s.BatchSize

	for g := 0; g < groups; g++ {
		start := g * s.BatchSize
		end := min(start+s.BatchSize, len(entities))

		s.logger.WithFields(logrus.Fields{
			"batch": g + 1,
			"of":    groups,
			"size":  end - start,
		}).Debug("Processing enrichment batch")

		if err := s.runGroup(ctx, entities, outcomes, start, end, fn); err != nil {
			return nil, err
		}

		if g < groups-1 && s.Delay > 0 {
			if err := s.sleep(ctx, s.Delay); err != nil {
				s.logger.WithError(err).Warn("Batch pause interrupted")
			}
		}
	}

	return outcomes, nil
}

// runGroup settles entities[start:end] concurrently, writing into outcomes by index
func (s *Scheduler) runGroup(ctx context.Context, entities []models.Entity, outcomes []models.Outcome, start, end int, fn EnrichFunc) error {
	var g errgroup.Group

	for i := start; i < end; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic enriching entity %d: %v", i, r)
				}
			}()

			entity := entities[i]
			if ctxErr := ctx.Err(); ctxErr != nil {
				outcomes[i] = models.Reject(&EnrichmentError{Empresa: entity.Nome(), Err: ctxErr})
				return nil
			}

			data, callErr := fn(ctx, entity)
			if callErr != nil {
				outcomes[i] = models.Reject(callErr)
				return nil
			}
			outcomes[i] = models.Fulfill(data)
			return nil
		})
	}

	return g.Wait()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
