package enrichment

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntities(t *testing.T) {
	entities, err := ParseEntities(json.RawMessage(`[{"nome":"Acme","cidade":"Recife"},{"nome":"Beta"}]`), 50)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "Acme", entities[0].Nome())
	assert.Equal(t, "Recife", entities[0]["cidade"])
}

func TestParseEntities_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"missing", ``, "empresas"},
		{"null", `null`, "empresas"},
		{"object", `{"nome":"Acme"}`, "empresas"},
		{"string", `"Acme"`, "empresas"},
		{"empty", `[]`, "empresas"},
		{"non-object item", `[{"nome":"A"}, 3]`, "empresas[1]"},
		{"null item", `[null]`, "empresas[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntities(json.RawMessage(tt.raw), 50)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseEntities_Cap(t *testing.T) {
	build := func(n int) json.RawMessage {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf(`{"nome":"E%d"}`, i)
		}
		return json.RawMessage("[" + strings.Join(items, ",") + "]")
	}

	entities, err := ParseEntities(build(50), 50)
	require.NoError(t, err)
	assert.Len(t, entities, 50)

	_, err = ParseEntities(build(51), 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "50")
}
