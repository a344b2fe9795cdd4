package models

import (
	"encoding/json"
	"fmt"
)

// Entity is a company record submitted for enrichment. Fields other than
// nome are passed through untouched to the per-entity call.
type Entity map[string]any

// Nome returns the display name of the entity
func (e Entity) Nome() string {
	v, ok := e["nome"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// String returns a string field or "" when absent or not a string
func (e Entity) String(key string) string {
	if s, ok := e[key].(string); ok {
		return s
	}
	return ""
}

// BatchRequest is the body of the batch enrichment endpoint. Empresas is kept
// raw so a missing field, null and a non-array value can be told apart.
type BatchRequest struct {
	Empresas json.RawMessage `json:"empresas" swaggertype:"array,object"`
}

// OutcomeStatus tags a settled per-entity call
type OutcomeStatus string

const (
	StatusFulfilled OutcomeStatus = "fulfilled"
	StatusRejected  OutcomeStatus = "rejected"
)

// Outcome is the settled result of one per-entity call
type Outcome struct {
	Status OutcomeStatus
	Data   map[string]any
	Err    error
}

// Fulfilled reports whether the call succeeded
func (o Outcome) Fulfilled() bool {
	return o.Status == StatusFulfilled
}

// Fulfill builds a successful outcome
func Fulfill(data map[string]any) Outcome {
	return Outcome{Status: StatusFulfilled, Data: data}
}

// Reject builds a failed outcome
func Reject(err error) Outcome {
	return Outcome{Status: StatusRejected, Err: err}
}

// WarningIdenticalProducts is the only similarity warning kind
const WarningIdenticalProducts = "produtos_identicos"

// SimilarityWarning flags two fulfilled results with the same product list.
// Empresas holds input positions, lowest first.
type SimilarityWarning struct {
	Tipo     string `json:"tipo" example:"produtos_identicos"`
	Empresas [2]int `json:"empresas" swaggertype:"array,integer" example:"0,2"`
	Detalhes string `json:"detalhes" example:"Produtos idênticos detectados"`
}

// BatchSummary holds aggregate counts of a finished batch
type BatchSummary struct {
	Total    int   `json:"total" example:"3"`
	Sucessos int   `json:"sucessos" example:"2"`
	Falhas   int   `json:"falhas" example:"1"`
	Duration int64 `json:"duration" example:"2150"`
	Avisos   int   `json:"avisos" example:"0"`
}

// ResultadoEmpresa pairs an entity name with its outcome
type ResultadoEmpresa struct {
	Empresa string         `json:"empresa" example:"Acme Ltda"`
	Status  OutcomeStatus  `json:"status" example:"fulfilled"`
	Data    map[string]any `json:"data"`
	Error   *string        `json:"error"`
}

// BatchResponse is the body returned by the batch enrichment endpoint
type BatchResponse struct {
	Success    bool                `json:"success" example:"true"`
	Summary    BatchSummary        `json:"summary"`
	Resultados []ResultadoEmpresa  `json:"resultados"`
	Avisos     []SimilarityWarning `json:"avisos"`
}

// EnrichmentData groups the three enrichment stages of one entity
type EnrichmentData struct {
	Cliente  map[string]any   `json:"cliente"`
	Mercado  map[string]any   `json:"mercado"`
	Produtos []map[string]any `json:"produtos"`
}

// Validacao reports normalization and data quality of the enriched client
type Validacao struct {
	CNPJ            string   `json:"cnpj,omitempty" example:"11.222.333/0001-81"`
	Email           string   `json:"email,omitempty" example:"contato@acme.com.br"`
	Telefone        string   `json:"telefone,omitempty" example:"(11) 98765-4321"`
	Score           int      `json:"score" example:"85"`
	CamposFaltantes string   `json:"camposFaltantes" example:"site, porte"`
	Erros           []string `json:"erros,omitempty"`
}

// Usage reports token consumption and cost of one enrichment
type Usage struct {
	InputTokens  int     `json:"inputTokens" example:"1830"`
	OutputTokens int     `json:"outputTokens" example:"2410"`
	TotalTokens  int     `json:"totalTokens" example:"4240"`
	Custo        float64 `json:"custo" example:"0.001721"`
	Duration     int64   `json:"duration" example:"14230"`
}

// EnrichEntityResponse is the body returned by the single-entity endpoint.
// Produtos is mirrored at the top level so batch consumers can compare results.
type EnrichEntityResponse struct {
	Success   bool             `json:"success" example:"true"`
	JobID     string           `json:"jobId" example:"5f0c7c1e-6c4b-4b8e-9d2a-1f0e8c3b7a11"`
	Cache     bool             `json:"cache" example:"false"`
	Data      EnrichmentData   `json:"data"`
	Produtos  []map[string]any `json:"produtos"`
	Validacao Validacao        `json:"validacao"`
	Usage     Usage            `json:"usage"`
}
