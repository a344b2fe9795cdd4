package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidCompletion marks an LLM answer that does not match its stage schema
var ErrInvalidCompletion = errors.New("completion failed schema validation")

const clienteSchema = `{
	"type": "object",
	"properties": {
		"cnpj":              {"type": ["string", "null"]},
		"email":             {"type": ["string", "null"]},
		"telefone":          {"type": ["string", "null"]},
		"site":              {"type": ["string", "null"]},
		"cidade":            {"type": ["string", "null"]},
		"uf":                {"type": ["string", "null"]},
		"porte":             {"type": ["string", "null"]},
		"setor":             {"type": ["string", "null"]},
		"produtoPrincipal":  {"type": ["string", "null"]},
		"segmentacaoB2bB2c": {"type": ["string", "null"]}
	}
}`

const mercadoSchema = `{
	"type": "object",
	"required": ["nome"],
	"properties": {
		"nome":              {"type": "string"},
		"scoreAtratividade": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
		"oportunidades":     {"type": ["array", "string", "null"]},
		"riscos":            {"type": ["array", "string", "null"]}
	}
}`

const produtosSchema = `{
	"type": "object",
	"required": ["produtos"],
	"properties": {
		"produtos": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["nome"],
				"properties": {
					"nome":            {"type": "string", "minLength": 1},
					"funcionalidades": {"type": ["array", "string", "null"]},
					"diferenciais":    {"type": ["array", "string", "null"]}
				}
			}
		}
	}
}`

// stageValidator checks each stage's answer against a JSON schema
type stageValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func newStageValidator() (*stageValidator, error) {
	v := &stageValidator{schemas: make(map[string]*gojsonschema.Schema)}
	for stage, raw := range map[string]string{
		stageCliente:  clienteSchema,
		stageMercado:  mercadoSchema,
		stageProdutos: produtosSchema,
	} {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", stage, err)
		}
		v.schemas[stage] = schema
	}
	return v, nil
}

func (v *stageValidator) validate(stage string, doc map[string]any) error {
	schema, ok := v.schemas[stage]
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: %s: %s", ErrInvalidCompletion, stage, strings.Join(errs, "; "))
	}
	return nil
}
