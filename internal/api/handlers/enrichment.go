package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/intelmarket/gestor-pav/internal/enrichment"
	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/intelmarket/gestor-pav/internal/logger"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/intelmarket/gestor-pav/internal/services"
	"github.com/sirupsen/logrus"
)

// retryAfterSeconds is sent to callers when the LLM provider rate limits us
const retryAfterSeconds = 60

// EnrichmentHandler handles the enrichment endpoints
type EnrichmentHandler struct {
	batchService services.BatchServiceInterface
	enricher     services.EntityEnricherInterface
	maxEntities  int
	logger       *logrus.Logger
}

// NewEnrichmentHandler creates a new enrichment handler
func NewEnrichmentHandler(batchService services.BatchServiceInterface, enricher services.EntityEnricherInterface, maxEntities int, logger *logrus.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		batchService: batchService,
		enricher:     enricher,
		maxEntities:  maxEntities,
		logger:       logger,
	}
}

// EnrichBatch handles batch enrichment
// @Summary Enrich a batch of companies
// @Description Enriches up to 50 companies in groups of 3 with a 1s pause between groups, then flags results with identical product lists
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param request body models.BatchRequest true "Companies to enrich"
// @Success 200 {object} models.BatchResponse
// @Failure 400 {object} models.FailureResponse
// @Failure 500 {object} models.FailureResponse
// @Router /ia-enriquecer-batch [post]
func (h *EnrichmentHandler) EnrichBatch(c *gin.Context) {
	requestID := c.GetString("request_id")
	log := logger.ForRequest(h.logger, requestID)

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		log.WithField("error", err.Error()).Warn("Invalid batch request body")

		c.JSON(http.StatusBadRequest, models.NewFailure("Corpo da requisição inválido: JSON esperado"))
		return
	}

	entities, err := enrichment.ParseEntities(req.Empresas, h.maxEntities)
	if err != nil {
		if !enrichment.IsValidationError(err) {
			log.WithField("error", err.Error()).Error("Batch request could not be parsed")
			c.JSON(http.StatusInternalServerError, models.NewFailure(err.Error()))
			return
		}

		log.WithField("error", err.Error()).Warn("Batch request rejected")
		c.JSON(http.StatusBadRequest, models.NewFailure(err.Error()))
		return
	}

	log.WithField("batch", len(entities)).Info("Processing enrichment batch")

	ctx := enrichment.WithRequestID(c.Request.Context(), requestID)
	resp, err := h.batchService.Process(ctx, entities)
	if err != nil {
		log.WithFields(logrus.Fields{
			"batch": len(entities),
			"error": err.Error(),
		}).Error("Batch enrichment failed")

		c.JSON(http.StatusInternalServerError, models.NewFailure(err.Error()))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// EnrichEntity handles single company enrichment
// @Summary Enrich one company
// @Description Runs the cliente, mercado and produtos LLM stages for one company. Results are cached.
// @Tags Enrichment
// @Accept json
// @Produce json
// @Param request body object true "Company record, nome is required"
// @Success 200 {object} models.EnrichEntityResponse
// @Failure 400 {object} models.FailureResponse
// @Failure 429 {object} models.FailureResponse
// @Failure 502 {object} models.FailureResponse
// @Failure 503 {object} models.FailureResponse
// @Router /ia-enriquecer [post]
func (h *EnrichmentHandler) EnrichEntity(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("request_id")

	var entity models.Entity
	if err := c.ShouldBindJSON(&entity); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.NewFailure("Corpo da requisição inválido: JSON esperado"))
		return
	}
	if entity == nil {
		entity = models.Entity{}
	}

	resp, err := h.enricher.Enrich(c.Request.Context(), entity)
	if err != nil {
		status, body := entityFailure(err)
		logger.ForRequest(h.logger, requestID).WithFields(logrus.Fields{
			"empresa":  entity.Nome(),
			"status":   status,
			"error":    err.Error(),
			"duration": time.Since(start),
		}).Warn("Entity enrichment failed")

		c.JSON(status, body)
		return
	}

	if resp.Cache {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	c.JSON(http.StatusOK, resp)
}

func entityFailure(err error) (int, models.FailureResponse) {
	switch {
	case errors.Is(err, services.ErrMissingNome):
		return http.StatusBadRequest, models.NewFailure(err.Error())
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, models.NewFailure("Serviço de IA não configurado")
	case llm.IsRateLimited(err):
		return http.StatusTooManyRequests, models.FailureResponse{
			Success:    false,
			Error:      "Limite de requisições da IA excedido",
			RetryAfter: retryAfterSeconds,
		}
	default:
		return http.StatusBadGateway, models.NewFailure("Erro ao enriquecer: " + err.Error())
	}
}
