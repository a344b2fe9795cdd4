package enrichment

import (
	"fmt"
	"time"

	"github.com/intelmarket/gestor-pav/internal/models"
)

// Aggregate pairs every entity with its outcome and computes the summary.
// Mismatched lengths are a programming error and fail the whole batch.
func Aggregate(entities []models.Entity, outcomes []models.Outcome, warnings []models.SimilarityWarning, elapsed time.Duration) (*models.BatchResponse, error) {
	if len(entities) != len(outcomes) {
		return nil, fmt.Errorf("aggregate: %d entities but %d outcomes", len(entities), len(outcomes))
	}
	if warnings == nil {
		warnings = []models.SimilarityWarning{}
	}

	resp := &models.BatchResponse{
		Success:    true,
		Resultados: make([]models.ResultadoEmpresa, len(entities)),
		Avisos:     warnings,
	}

	for i, o := range outcomes {
		r := models.ResultadoEmpresa{
			Empresa: entities[i].Nome(),
			Status:  o.Status,
		}
		switch o.Status {
		case models.StatusFulfilled:
			r.Data = o.Data
			resp.Summary.Sucessos++
		case models.StatusRejected:
			msg := "erro desconhecido"
			if o.Err != nil {
				msg = o.Err.Error()
			}
			r.Error = &msg
			resp.Summary.Falhas++
		default:
			return nil, fmt.Errorf("aggregate: entity %d has unsettled outcome %q", i, o.Status)
		}
		resp.Resultados[i] = r
	}

	resp.Summary.Total = len(entities)
	resp.Summary.Duration = elapsed.Milliseconds()
	resp.Summary.Avisos = len(warnings)

	return resp, nil
}
