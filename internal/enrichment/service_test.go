package enrichment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/intelmarket/gestor-pav/internal/logger"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnricher struct {
	mu    sync.Mutex
	calls []string
	fn    func(models.Entity) (map[string]any, error)
}

func (f *fakeEnricher) Enrich(_ context.Context, e models.Entity) (map[string]any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, e.Nome())
	f.mu.Unlock()
	return f.fn(e)
}

func TestBatchService_Process(t *testing.T) {
	enricher := &fakeEnricher{fn: func(e models.Entity) (map[string]any, error) {
		switch e.Nome() {
		case "Empresa 1":
			return nil, &EnrichmentError{Empresa: e.Nome(), StatusCode: 500, Err: ErrUpstreamStatus}
		case "Empresa 0", "Empresa 3":
			return map[string]any{"produtos": produtos("X", "Y")}, nil
		default:
			return map[string]any{"produtos": produtos(e.Nome())}, nil
		}
	}}

	var sleeps int
	scheduler := NewScheduler(3, time.Second, logger.Discard()).WithSleep(func(context.Context, time.Duration) error {
		sleeps++
		return nil
	})
	svc := NewBatchService(scheduler, enricher, logger.Discard())

	entities := makeEntities(5)
	resp, err := svc.Process(context.Background(), entities)
	require.NoError(t, err)

	assert.Len(t, enricher.calls, 5)
	assert.Equal(t, 1, sleeps)
	assert.Equal(t, 5, resp.Summary.Total)
	assert.Equal(t, 4, resp.Summary.Sucessos)
	assert.Equal(t, 1, resp.Summary.Falhas)
	require.Len(t, resp.Avisos, 1)
	assert.Equal(t, [2]int{0, 3}, resp.Avisos[0].Empresas)
	assert.Equal(t, 1, resp.Summary.Avisos)

	for i, e := range entities {
		assert.Equal(t, e.Nome(), resp.Resultados[i].Empresa)
	}
	assert.Equal(t, models.StatusRejected, resp.Resultados[1].Status)
	require.NotNil(t, resp.Resultados[1].Error)
}

func TestBatchService_PanicSurfacesAsError(t *testing.T) {
	enricher := &fakeEnricher{fn: func(models.Entity) (map[string]any, error) {
		var m map[string]int
		m["x"]++
		return nil, nil
	}}
	svc := NewBatchService(NewScheduler(3, 0, logger.Discard()), enricher, logger.Discard())

	resp, err := svc.Process(context.Background(), makeEntities(2))
	require.Error(t, err)
	assert.Nil(t, resp)
}
