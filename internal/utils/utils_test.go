package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCNPJ(t *testing.T) {
	assert.True(t, IsValidCNPJ("11222333000181"))
	assert.True(t, IsValidCNPJ("11.222.333/0001-81"))
	assert.False(t, IsValidCNPJ("11222333000182"))
	assert.False(t, IsValidCNPJ("11111111111111"))
	assert.False(t, IsValidCNPJ("1122233300018"))

	assert.Equal(t, "11.222.333/0001-81", FormatCNPJ("11222333000181"))
	assert.Equal(t, "123", FormatCNPJ("123"))

	formatted, ok := NormalizeCNPJ(" 11.222.333/0001-81 ")
	assert.True(t, ok)
	assert.Equal(t, "11.222.333/0001-81", formatted)

	_, ok = NormalizeCNPJ("00.000.000/0000-00")
	assert.False(t, ok)

	assert.Equal(t, "11222333000181", CompleteCNPJ("11.222.333/0001"))
	assert.True(t, IsValidCNPJ(CompleteCNPJ("987654320001")))
	assert.Empty(t, CompleteCNPJ("123"))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1133334444", "(11) 3333-4444", true},
		{"(81) 98765-4321", "(81) 98765-4321", true},
		{"+55 11 3333 4444", "", false},
		{"3333-4444", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizePhone(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "contato@acme.com.br", NormalizeEmail("  Contato@ACME.com.br "))
	assert.True(t, IsValidEmail("contato@acme.com.br"))
	assert.False(t, IsValidEmail("contato@example.com"))
	assert.False(t, IsValidEmail("contato@Teste.com"))
	assert.False(t, IsValidEmail("sem-arroba.com"))
	assert.False(t, IsValidEmail("a b@acme.com"))
}

func TestValidateRecord_Complete(t *testing.T) {
	record := map[string]any{
		"nome":                "Acme Ltda",
		"cnpj":                "11222333000181",
		"email":               " VENDAS@Acme.com.br",
		"telefone":            "81987654321",
		"site":                "https://acme.com.br",
		"cidade":              "Recife",
		"uf":                  "PE",
		"porte":               "Médio",
		"setor":               "Indústria",
		"produto_principal":   "Embalagens",
		"segmentacao_b2b_b2c": "B2B",
		"enriquecido_em":      "2024-01-15T10:30:00Z",
	}

	report := ValidateRecord(record)
	assert.True(t, report.Valid())
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.CamposFaltantes)
	assert.Empty(t, report.Erros)
	assert.Equal(t, "11.222.333/0001-81", record["cnpj"])
	assert.Equal(t, "vendas@acme.com.br", record["email"])
	assert.Equal(t, "(81) 98765-4321", record["telefone"])
}

func TestValidateRecord_Partial(t *testing.T) {
	record := map[string]any{
		"nome":     "Beta",
		"cnpj":     "11222333000100",
		"email":    "x@email.com",
		"telefone": "123",
		"site":     "beta.com.br",
		"cidade":   "Natal",
	}

	report := ValidateRecord(record)
	require.Len(t, report.Erros, 3)
	assert.False(t, report.Valid())
	assert.Equal(t, []string{"CNPJ inválido", "Email inválido", "Telefone inválido"}, report.Erros)
	// nome + cidade
	assert.Equal(t, 15, report.Score)
	assert.Equal(t, "uf, porte, setor, produto_principal", report.CamposFaltantes)
}

func TestMissingFields_Empty(t *testing.T) {
	assert.Equal(t, "nome, cnpj, email, telefone, site, cidade, uf, porte, setor, produto_principal", MissingFields(map[string]any{}))
}
