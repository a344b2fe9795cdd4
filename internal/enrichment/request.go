package enrichment

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/intelmarket/gestor-pav/internal/models"
)

const msgEmpresasRequired = "Parâmetro obrigatório: empresas (array não vazio)"

// ParseEntities decodes the empresas field of a batch request. It rejects a
// missing, null, non-array or empty value and more than max entries.
func ParseEntities(raw json.RawMessage, max int) ([]models.Entity, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || trimmed[0] != '[' {
		return nil, &ValidationError{Message: msgEmpresasRequired}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &ValidationError{Message: msgEmpresasRequired}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Message: msgEmpresasRequired}
	}
	if len(items) > max {
		return nil, &ValidationError{Message: fmt.Sprintf("Máximo de %d empresas por lote (recebido: %d)", max, len(items))}
	}

	entities := make([]models.Entity, len(items))
	for i, item := range items {
		var e models.Entity
		if err := json.Unmarshal(item, &e); err != nil || e == nil {
			return nil, &ValidationError{Message: fmt.Sprintf("empresas[%d] deve ser um objeto", i)}
		}
		entities[i] = e
	}
	return entities, nil
}
