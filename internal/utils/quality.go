package utils

import (
	"fmt"
	"slices"
	"strings"
)

const errInvalidCNPJ = "CNPJ inválido"

// field weights of the data quality score, summing to 100
var qualityWeights = []struct {
	field  string
	weight int
}{
	{"nome", 10},
	{"cnpj", 15},
	{"email", 10},
	{"telefone", 10},
	{"site", 10},
	{"cidade", 5},
	{"uf", 5},
	{"porte", 5},
	{"setor", 10},
	{"produto_principal", 10},
	{"segmentacao_b2b_b2c", 5},
	{"enriquecido_em", 5},
}

var requiredFields = []string{
	"nome", "cnpj", "email", "telefone", "site",
	"cidade", "uf", "porte", "setor", "produto_principal",
}

// QualityReport is the outcome of validating an enriched record
type QualityReport struct {
	CNPJValid       bool
	EmailValid      bool
	PhoneValid      bool
	Score           int
	CamposFaltantes string
	Erros           []string
}

// Valid reports whether the record has no blocking errors. Only an invalid
// CNPJ blocks; bad contact data is only reported.
func (r QualityReport) Valid() bool {
	return !slices.Contains(r.Erros, errInvalidCNPJ)
}

// ValidateRecord normalizes cnpj, email and telefone in place and scores the
// record. Invalid contact fields are reported in Erros.
func ValidateRecord(record map[string]any) QualityReport {
	var report QualityReport

	if raw := stringField(record, "cnpj"); raw != "" {
		if formatted, ok := NormalizeCNPJ(raw); ok {
			record["cnpj"] = formatted
			report.CNPJValid = true
		} else {
			report.Erros = append(report.Erros, errInvalidCNPJ)
		}
	}

	if raw := stringField(record, "email"); raw != "" {
		email := NormalizeEmail(raw)
		if IsValidEmail(email) {
			record["email"] = email
			report.EmailValid = true
		} else {
			report.Erros = append(report.Erros, "Email inválido")
		}
	}

	if raw := stringField(record, "telefone"); raw != "" {
		if phone, ok := NormalizePhone(raw); ok {
			record["telefone"] = phone
			report.PhoneValid = true
		} else {
			report.Erros = append(report.Erros, "Telefone inválido")
		}
	}

	report.Score = QualityScore(record)
	report.CamposFaltantes = MissingFields(record)
	return report
}

// QualityScore returns a 0-100 completeness score for record
func QualityScore(record map[string]any) int {
	score := 0
	for _, w := range qualityWeights {
		v := stringField(record, w.field)
		if v == "" {
			continue
		}
		switch w.field {
		case "cnpj":
			if !IsValidCNPJ(v) {
				continue
			}
		case "email":
			if !IsValidEmail(v) {
				continue
			}
		case "telefone":
			if _, ok := NormalizePhone(v); !ok {
				continue
			}
		case "site":
			if !IsWebsite(v) {
				continue
			}
		}
		score += w.weight
	}
	return score
}

// MissingFields lists required fields that are empty, comma separated
func MissingFields(record map[string]any) string {
	missing := make([]string, 0, len(requiredFields))
	for _, f := range requiredFields {
		if stringField(record, f) == "" {
			missing = append(missing, f)
		}
	}
	return strings.Join(missing, ", ")
}

func stringField(record map[string]any, key string) string {
	switch v := record[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if !v {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(v)
	}
}
