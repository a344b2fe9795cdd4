package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/intelmarket/gestor-pav/internal/metrics"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/intelmarket/gestor-pav/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrMissingNome is returned when the entity has no display name
var ErrMissingNome = errors.New("Parâmetro obrigatório: nome")

const (
	stageCliente  = "cliente"
	stageMercado  = "mercado"
	stageProdutos = "produtos"

	processoEnriquecimento = "enriquecimento_completo"
	plataformaOpenAI       = "openai"

	progressoCliente = 33
	progressoMercado = 66
)

// EntityEnricher enriches one company through three chained LLM stages
type EntityEnricher struct {
	llm       ChatCompleter
	cache     CacheServiceInterface
	usage     UsageRecorder
	jobs      JobTracker
	validator *stageValidator
	logger    *logrus.Logger
	now       func() time.Time
}

// NewEntityEnricher creates an enricher. cache, usage and jobs may be nil.
func NewEntityEnricher(completer ChatCompleter, cache CacheServiceInterface, usage UsageRecorder, jobs JobTracker, logger *logrus.Logger) (*EntityEnricher, error) {
	validator, err := newStageValidator()
	if err != nil {
		return nil, err
	}
	return &EntityEnricher{
		llm:       completer,
		cache:     cache,
		usage:     usage,
		jobs:      jobs,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// CacheKey derives the cache key of an entity from its name and CNPJ
func CacheKey(entity models.Entity) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(entity.Nome())) + "|" + utils.OnlyDigits(entity.String("cnpj"))))
	return CacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Enrich returns the cached enrichment of entity or runs the cliente,
// mercado and produtos stages against the LLM
func (e *EntityEnricher) Enrich(ctx context.Context, entity models.Entity) (*models.EnrichEntityResponse, error) {
	if strings.TrimSpace(entity.Nome()) == "" {
		return nil, ErrMissingNome
	}
	if !e.llm.Configured() {
		return nil, llm.ErrMissingAPIKey
	}

	start := e.now()
	log := e.logger.WithFields(logrus.Fields{"empresa": entity.Nome()})
	key := CacheKey(entity)

	if e.cache != nil {
		var cached models.EnrichEntityResponse
		if err := e.cache.GetJSON(ctx, key, &cached); err == nil {
			cached.Cache = true
			metrics.EntityRequestsTotal.WithLabelValues("cache_hit").Inc()
			log.Debug("Enrichment served from cache")
			return &cached, nil
		}
	}

	jobID := uuid.New().String()
	log = log.WithField("job_id", jobID)
	e.trackJob(ctx, log, "start", func(ctx context.Context) error {
		return e.jobs.Start(ctx, JobRecord{
			ID:         jobID,
			UserID:     text(entity["userId"]),
			EntidadeID: text(entity["entidadeId"]),
			Tipo:       processoEnriquecimento,
			Etapa:      stageCliente,
		})
	})

	resp, inTokens, outTokens, err := e.runStages(ctx, log, entity, jobID)
	duration := e.now().Sub(start)

	if err != nil {
		metrics.EntityRequestsTotal.WithLabelValues("error").Inc()
		e.trackJob(ctx, log, "fail", func(ctx context.Context) error {
			return e.jobs.Fail(ctx, jobID, err.Error(), duration)
		})
		e.recordUsage(ctx, entity, inTokens, outTokens, duration, err)
		log.WithError(err).Error("Enrichment failed")
		return nil, err
	}

	custo := llm.Cost(e.llm.Model(), inTokens, outTokens)
	resp.Usage = models.Usage{
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		TotalTokens:  inTokens + outTokens,
		Custo:        custo,
		Duration:     duration.Milliseconds(),
	}
	metrics.RecordLLMUsage(inTokens, outTokens, custo)
	metrics.EntityRequestsTotal.WithLabelValues("success").Inc()
	e.trackJob(ctx, log, "complete", func(ctx context.Context) error {
		return e.jobs.Complete(ctx, jobID, []string{stageCliente, stageMercado, stageProdutos}, duration, custo)
	})
	e.recordUsage(ctx, entity, inTokens, outTokens, duration, nil)

	if e.cache != nil {
		if err := e.cache.SetJSON(ctx, key, resp); err != nil {
			log.WithError(err).Warn("Failed to cache enrichment")
		}
	}

	log.WithFields(logrus.Fields{
		"tokens":      resp.Usage.TotalTokens,
		"custo":       custo,
		"score":       resp.Validacao.Score,
		"duration_ms": resp.Usage.Duration,
	}).Info("Entity enriched")

	return resp, nil
}

func (e *EntityEnricher) runStages(ctx context.Context, log logrus.FieldLogger, entity models.Entity, jobID string) (*models.EnrichEntityResponse, int, int, error) {
	var inTokens, outTokens int

	call := func(stage string, p llm.Prompt) (map[string]any, error) {
		completion, err := e.llm.CompleteJSON(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("etapa %s: %w", stage, err)
		}
		inTokens += completion.InputTokens
		outTokens += completion.OutputTokens
		if err := e.validator.validate(stage, completion.Content); err != nil {
			return nil, err
		}
		return completion.Content, nil
	}

	advance := func(progresso int, next string, completas ...string) {
		e.trackJob(ctx, log, "advance", func(ctx context.Context) error {
			return e.jobs.Advance(ctx, jobID, progresso, next, completas)
		})
	}

	cliente, err := call(stageCliente, clientePrompt(entity))
	if err != nil {
		return nil, inTokens, outTokens, err
	}
	advance(progressoCliente, stageMercado, stageCliente)

	mercado, err := call(stageMercado, mercadoPrompt(entity, cliente))
	if err != nil {
		return nil, inTokens, outTokens, err
	}
	advance(progressoMercado, stageProdutos, stageCliente, stageMercado)

	produtosDoc, err := call(stageProdutos, produtosPrompt(entity, cliente, mercado))
	if err != nil {
		return nil, inTokens, outTokens, err
	}

	produtos := toObjects(produtosDoc["produtos"])
	validacao := e.validateCliente(entity, cliente)

	return &models.EnrichEntityResponse{
		Success: true,
		JobID:   jobID,
		Data: models.EnrichmentData{
			Cliente:  cliente,
			Mercado:  mercado,
			Produtos: produtos,
		},
		Produtos:  produtos,
		Validacao: validacao,
	}, inTokens, outTokens, nil
}

// validateCliente normalizes contact data in cliente and scores it
func (e *EntityEnricher) validateCliente(entity models.Entity, cliente map[string]any) models.Validacao {
	nome := text(cliente["nome"])
	if nome == "" {
		nome = entity.Nome()
	}
	record := map[string]any{
		"nome":                nome,
		"cnpj":                cliente["cnpj"],
		"email":               cliente["email"],
		"telefone":            cliente["telefone"],
		"site":                cliente["site"],
		"cidade":              cliente["cidade"],
		"uf":                  cliente["uf"],
		"porte":               cliente["porte"],
		"setor":               cliente["setor"],
		"produto_principal":   cliente["produtoPrincipal"],
		"segmentacao_b2b_b2c": cliente["segmentacaoB2bB2c"],
		"enriquecido_em":      e.now().UTC().Format(time.RFC3339),
	}

	report := utils.ValidateRecord(record)

	v := models.Validacao{
		Score:           report.Score,
		CamposFaltantes: report.CamposFaltantes,
		Erros:           report.Erros,
	}
	if report.CNPJValid {
		v.CNPJ = text(record["cnpj"])
		cliente["cnpj"] = v.CNPJ
	}
	if report.EmailValid {
		v.Email = text(record["email"])
		cliente["email"] = v.Email
	}
	if report.PhoneValid {
		v.Telefone = text(record["telefone"])
		cliente["telefone"] = v.Telefone
	}
	return v
}

func (e *EntityEnricher) recordUsage(ctx context.Context, entity models.Entity, in, out int, duration time.Duration, failure error) {
	if e.usage == nil {
		return
	}

	r := UsageRecord{
		UserID:       text(entity["userId"]),
		Processo:     processoEnriquecimento,
		Plataforma:   plataformaOpenAI,
		Modelo:       e.llm.Model(),
		InputTokens:  in,
		OutputTokens: out,
		Duration:     duration,
		EntidadeID:   text(entity["entidadeId"]),
		Sucesso:      failure == nil,
	}
	if failure == nil {
		r.Custo = llm.Cost(r.Modelo, in, out)
	} else {
		r.Erro = failure.Error()
	}

	// the ledger is best effort and must not fail the enrichment
	if err := e.usage.Record(context.WithoutCancel(ctx), r); err != nil {
		e.logger.WithFields(logrus.Fields{
			"empresa": entity.Nome(),
			"error":   err.Error(),
		}).Warn("Failed to record LLM usage")
	}
}

// trackJob applies one ia_jobs transition. Tracking is best effort and
// never fails the enrichment.
func (e *EntityEnricher) trackJob(ctx context.Context, log logrus.FieldLogger, step string, apply func(context.Context) error) {
	if e.jobs == nil {
		return
	}
	if err := apply(context.WithoutCancel(ctx)); err != nil {
		log.WithFields(logrus.Fields{
			"step":  step,
			"error": err.Error(),
		}).Warn("Failed to track enrichment job")
	}
}

// Health returns service health status
func (e *EntityEnricher) Health() map[string]interface{} {
	if !e.llm.Configured() {
		return map[string]interface{}{
			"status": "unhealthy",
			"error":  llm.ErrMissingAPIKey.Error(),
		}
	}
	return map[string]interface{}{
		"status": "healthy",
		"model":  e.llm.Model(),
	}
}

func toObjects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
