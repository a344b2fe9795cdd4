package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/intelmarket/gestor-pav/internal/llm"
	"github.com/intelmarket/gestor-pav/internal/logger"
	"github.com/intelmarket/gestor-pav/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	mu         sync.Mutex
	prompts    []llm.Prompt
	replies    []map[string]any
	err        error
	configured bool
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, p llm.Prompt) (*llm.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := len(f.prompts)
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return nil, f.err
	}
	if idx >= len(f.replies) {
		return nil, llm.ErrEmptyCompletion
	}
	return &llm.Completion{Content: f.replies[idx], InputTokens: 100, OutputTokens: 50}, nil
}

func (f *fakeCompleter) Model() string    { return "gpt-4o-mini" }
func (f *fakeCompleter) Configured() bool { return f.configured }

func stageReplies() []map[string]any {
	return []map[string]any{
		{
			"cnpj":              "11222333000181",
			"email":             " Contato@Acme.com.br ",
			"telefone":          "11987654321",
			"site":              "https://acme.com.br",
			"cidade":            "São Paulo",
			"uf":                "SP",
			"porte":             "Média",
			"setor":             "Tecnologia - Software",
			"produtoPrincipal":  "ERP",
			"segmentacaoB2bB2c": "B2B",
		},
		{"nome": "Software de gestão", "scoreAtratividade": 72.0},
		{"produtos": []any{
			map[string]any{"nome": "ERP Cloud"},
			map[string]any{"nome": "CRM"},
		}},
	}
}

func newTestEnricher(t *testing.T, completer *fakeCompleter, usage UsageRecorder) (*EntityEnricher, *CacheService) {
	t.Helper()
	return newTrackedEnricher(t, completer, usage, nil)
}

func newTrackedEnricher(t *testing.T, completer *fakeCompleter, usage UsageRecorder, jobs JobTracker) (*EntityEnricher, *CacheService) {
	t.Helper()
	cache, _ := newRedisCache(t, time.Hour)
	e, err := NewEntityEnricher(completer, cache, usage, jobs, logger.Discard())
	require.NoError(t, err)
	return e, cache
}

func TestEntityEnricher_Enrich(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ia_usage")).
		WithArgs("7", processoEnriquecimento, plataformaOpenAI, "gpt-4o-mini",
			300, 150, 450, sqlmock.AnyArg(), sqlmock.AnyArg(), "99", true, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	completer := &fakeCompleter{configured: true, replies: stageReplies()}
	enricher, _ := newTestEnricher(t, completer, NewUsageStore(db))

	entity := models.Entity{"nome": "Acme Ltda", "userId": 7, "entidadeId": "99"}
	resp, err := enricher.Enrich(context.Background(), entity)
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.False(t, resp.Cache)
	assert.NotEmpty(t, resp.JobID)

	require.Len(t, completer.prompts, 3)
	assert.Equal(t, 0.8, completer.prompts[0].Temperature)
	assert.Equal(t, 1000, completer.prompts[0].MaxTokens)
	assert.Equal(t, 0.5, completer.prompts[1].Temperature)
	assert.Contains(t, completer.prompts[1].User, "ERP")
	assert.Equal(t, 0.7, completer.prompts[2].Temperature)
	assert.Contains(t, completer.prompts[2].User, "Software de gestão")

	assert.Equal(t, "11.222.333/0001-81", resp.Validacao.CNPJ)
	assert.Equal(t, "contato@acme.com.br", resp.Validacao.Email)
	assert.Equal(t, "(11) 98765-4321", resp.Validacao.Telefone)
	assert.Equal(t, 100, resp.Validacao.Score)
	assert.Empty(t, resp.Validacao.CamposFaltantes)
	assert.Equal(t, "11.222.333/0001-81", resp.Data.Cliente["cnpj"])

	require.Len(t, resp.Produtos, 2)
	assert.Equal(t, resp.Data.Produtos, resp.Produtos)
	assert.Equal(t, "ERP Cloud", resp.Produtos[0]["nome"])

	assert.Equal(t, 300, resp.Usage.InputTokens)
	assert.Equal(t, 150, resp.Usage.OutputTokens)
	assert.Equal(t, 450, resp.Usage.TotalTokens)
	assert.InDelta(t, llm.Cost("gpt-4o-mini", 300, 150), resp.Usage.Custo, 1e-12)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityEnricher_ServesFromCache(t *testing.T) {
	completer := &fakeCompleter{configured: true, replies: stageReplies()}
	enricher, _ := newTestEnricher(t, completer, nil)
	ctx := context.Background()

	first, err := enricher.Enrich(ctx, models.Entity{"nome": "Acme Ltda", "cnpj": "11.222.333/0001-81"})
	require.NoError(t, err)

	second, err := enricher.Enrich(ctx, models.Entity{"nome": "  ACME LTDA ", "cnpj": "11222333000181"})
	require.NoError(t, err)

	assert.Len(t, completer.prompts, 3)
	assert.True(t, second.Cache)
	assert.Equal(t, first.JobID, second.JobID)
	assert.Len(t, second.Produtos, 2)
}

func TestEntityEnricher_Errors(t *testing.T) {
	t.Run("missing nome", func(t *testing.T) {
		enricher, _ := newTestEnricher(t, &fakeCompleter{configured: true}, nil)
		_, err := enricher.Enrich(context.Background(), models.Entity{"cnpj": "1"})
		assert.ErrorIs(t, err, ErrMissingNome)
	})

	t.Run("missing api key", func(t *testing.T) {
		completer := &fakeCompleter{}
		enricher, _ := newTestEnricher(t, completer, nil)
		_, err := enricher.Enrich(context.Background(), models.Entity{"nome": "Acme"})
		assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
		assert.Empty(t, completer.prompts)
		assert.Equal(t, "unhealthy", enricher.Health()["status"])
	})

	t.Run("rate limited", func(t *testing.T) {
		completer := &fakeCompleter{configured: true, err: &llm.APIError{StatusCode: 429, Body: "slow down"}}
		enricher, _ := newTestEnricher(t, completer, nil)
		_, err := enricher.Enrich(context.Background(), models.Entity{"nome": "Acme"})
		require.Error(t, err)
		assert.True(t, llm.IsRateLimited(err))
	})
}

func TestEntityEnricher_SchemaFailureIsRecorded(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ia_usage")).
		WithArgs(nil, processoEnriquecimento, plataformaOpenAI, "gpt-4o-mini",
			300, 150, 450, 0.0, sqlmock.AnyArg(), nil, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	replies := stageReplies()
	replies[2] = map[string]any{"produtos": []any{}}
	completer := &fakeCompleter{configured: true, replies: replies}
	enricher, cache := newTestEnricher(t, completer, NewUsageStore(db))

	entity := models.Entity{"nome": "Acme"}
	_, err = enricher.Enrich(context.Background(), entity)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCompletion))

	exists, err := cache.Exists(context.Background(), CacheKey(entity))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey(t *testing.T) {
	a := CacheKey(models.Entity{"nome": "Acme", "cnpj": "11.222.333/0001-81"})
	b := CacheKey(models.Entity{"nome": " acme ", "cnpj": "11222333000181"})
	c := CacheKey(models.Entity{"nome": "Acme"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^enriquecimento:[0-9a-f]{40}$`, a)
}

func TestEntityEnricher_TracksJobProgress(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	jobID := &sameJobID{}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ia_jobs")).
		WithArgs(jobID, "7", "99", processoEnriquecimento, "processing", 0, stageCliente).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET progresso = $2")).
		WithArgs(jobID, progressoCliente, stageMercado, `["cliente"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET progresso = $2")).
		WithArgs(jobID, progressoMercado, stageProdutos, `["cliente","mercado"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("status = 'completed'")).
		WithArgs(jobID, `["cliente","mercado","produtos"]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	completer := &fakeCompleter{configured: true, replies: stageReplies()}
	enricher, _ := newTrackedEnricher(t, completer, nil, NewJobStore(db))

	resp, err := enricher.Enrich(context.Background(), models.Entity{"nome": "Acme", "userId": "7", "entidadeId": float64(99)})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, resp.JobID, jobID.id)
}

func TestEntityEnricher_TracksJobFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	jobID := &sameJobID{}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ia_jobs")).
		WithArgs(jobID, nil, nil, processoEnriquecimento, "processing", 0, stageCliente).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET progresso = $2")).
		WithArgs(jobID, progressoCliente, stageMercado, `["cliente"]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("status = 'failed'")).
		WithArgs(jobID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// only the cliente stage answers
	completer := &fakeCompleter{configured: true, replies: stageReplies()[:1]}
	enricher, _ := newTrackedEnricher(t, completer, nil, NewJobStore(db))

	_, err = enricher.Enrich(context.Background(), models.Entity{"nome": "Acme"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityEnricher_JobTrackingIsBestEffort(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ia_jobs")).
		WillReturnError(errors.New("relation \"ia_jobs\" does not exist"))

	completer := &fakeCompleter{configured: true, replies: stageReplies()}
	enricher, _ := newTrackedEnricher(t, completer, nil, NewJobStore(db))

	resp, err := enricher.Enrich(context.Background(), models.Entity{"nome": "Acme"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NoError(t, mock.ExpectationsWereMet())
}
