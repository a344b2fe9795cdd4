package enrichment

import (
	"errors"
	"testing"

	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func produtos(names ...any) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = map[string]any{"nome": n}
	}
	return out
}

func TestProductSignature(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"names joined", map[string]any{"produtos": produtos("X", "Y")}, "X,Y"},
		{"nested under data is ignored", map[string]any{"data": map[string]any{"produtos": produtos("A")}}, ""},
		{"top level only", map[string]any{"produtos": produtos("T"), "data": map[string]any{"produtos": produtos("N")}}, "T"},
		{"missing", map[string]any{"cliente": map[string]any{}}, ""},
		{"nil payload", nil, ""},
		{"not an array", map[string]any{"produtos": "X"}, ""},
		{"empty array", map[string]any{"produtos": []any{}}, ""},
		{"item without nome", map[string]any{"produtos": []any{map[string]any{}, map[string]any{"nome": "B"}}}, ",B"},
		{"numeric nome", map[string]any{"produtos": produtos(float64(7))}, "7"},
		{"typed slice", map[string]any{"produtos": []map[string]any{{"nome": "P"}, {"nome": "Q"}}}, "P,Q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductSignature(tt.payload))
		})
	}
}

func TestDetectIdenticalProducts_FlagsEqualLists(t *testing.T) {
	outcomes := []models.Outcome{
		models.Fulfill(map[string]any{"produtos": produtos("X", "Y")}),
		models.Fulfill(map[string]any{"produtos": produtos("Z")}),
		models.Fulfill(map[string]any{"produtos": produtos("X", "Y")}),
	}

	warnings := DetectIdenticalProducts(outcomes)
	require.Len(t, warnings, 1)
	assert.Equal(t, models.SimilarityWarning{
		Tipo:     "produtos_identicos",
		Empresas: [2]int{0, 2},
		Detalhes: "Produtos idênticos detectados",
	}, warnings[0])
}

func TestDetectIdenticalProducts_BothWithoutProductsNotFlagged(t *testing.T) {
	outcomes := []models.Outcome{
		models.Fulfill(map[string]any{"cliente": "a"}),
		models.Fulfill(map[string]any{"cliente": "b"}),
	}
	assert.Empty(t, DetectIdenticalProducts(outcomes))
}

func TestDetectIdenticalProducts_IgnoresRejected(t *testing.T) {
	outcomes := []models.Outcome{
		models.Fulfill(map[string]any{"produtos": produtos("X")}),
		models.Reject(errors.New("x")),
		models.Fulfill(map[string]any{"produtos": produtos("Y")}),
	}
	assert.Empty(t, DetectIdenticalProducts(outcomes))
}

func TestDetectIdenticalProducts_OrderedPairs(t *testing.T) {
	same := func() models.Outcome { return models.Fulfill(map[string]any{"produtos": produtos("X")}) }
	outcomes := []models.Outcome{same(), same(), same()}

	warnings := DetectIdenticalProducts(outcomes)
	require.Len(t, warnings, 3)
	assert.Equal(t, [2]int{0, 1}, warnings[0].Empresas)
	assert.Equal(t, [2]int{0, 2}, warnings[1].Empresas)
	assert.Equal(t, [2]int{1, 2}, warnings[2].Empresas)
	for _, w := range warnings {
		assert.Less(t, w.Empresas[0], w.Empresas[1])
	}
}

func TestDetectIdenticalProducts_EmptyInputGivesEmptySlice(t *testing.T) {
	warnings := DetectIdenticalProducts(nil)
	assert.NotNil(t, warnings)
	assert.Empty(t, warnings)
}
