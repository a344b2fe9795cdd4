package enrichment

import (
	"fmt"
	"strings"

	"github.com/intelmarket/gestor-pav/internal/models"
)

const detalhesIdenticalProducts = "Produtos idênticos detectados"

// ProductSignature joins the nome of every item in the payload's produtos
// array with commas. Payloads without a top-level produtos array give "".
func ProductSignature(payload map[string]any) string {
	produtos, ok := asList(payload["produtos"])
	if !ok {
		return ""
	}

	names := make([]string, len(produtos))
	for i, item := range produtos {
		names[i] = productName(item)
	}
	return strings.Join(names, ",")
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func productName(item any) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	switch nome := obj["nome"].(type) {
	case nil:
		return ""
	case string:
		return nome
	default:
		return fmt.Sprint(nome)
	}
}

// DetectIdenticalProducts compares every pair of fulfilled outcomes and
// flags pairs whose non-empty product signatures are equal. Warnings are
// ordered by first index, then second.
func DetectIdenticalProducts(outcomes []models.Outcome) []models.SimilarityWarning {
	signatures := make([]string, len(outcomes))
	for i, o := range outcomes {
		if o.Fulfilled() {
			signatures[i] = ProductSignature(o.Data)
		}
	}

	warnings := make([]models.SimilarityWarning, 0)
	for i := 0; i < len(outcomes); i++ {
		if !outcomes[i].Fulfilled() || signatures[i] == "" {
			continue
		}
		for j := i + 1; j < len(outcomes); j++ {
			if !outcomes[j].Fulfilled() || signatures[j] == "" {
				continue
			}
			if signatures[i] == signatures[j] {
				warnings = append(warnings, models.SimilarityWarning{
					Tipo:     models.WarningIdenticalProducts,
					Empresas: [2]int{i, j},
					Detalhes: detalhesIdenticalProducts,
				})
			}
		}
	}
	return warnings
}
