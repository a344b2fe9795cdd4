package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/intelmarket/gestor-pav/internal/models"
)

const maxErrorBody = 4 << 10

// EntityClient posts one entity to the single-entity enrichment endpoint
type EntityClient struct {
	httpClient  *http.Client
	url         string
	callTimeout time.Duration
}

// NewEntityClient creates a client for url. A zero callTimeout leaves calls
// bounded only by the caller's context.
func NewEntityClient(httpClient *http.Client, url string, callTimeout time.Duration) *EntityClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &EntityClient{
		httpClient:  httpClient,
		url:         url,
		callTimeout: callTimeout,
	}
}

// Enrich sends entity as JSON and returns the decoded response body
func (c *EntityClient) Enrich(ctx context.Context, entity models.Entity) (map[string]any, error) {
	nome := entity.Nome()

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return nil, &EnrichmentError{Empresa: nome, Err: fmt.Errorf("encode entity: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &EnrichmentError{Empresa: nome, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if id := RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &EnrichmentError{Empresa: nome, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &EnrichmentError{
			Empresa:    nome,
			StatusCode: resp.StatusCode,
			Detail:     upstreamMessage(raw),
			Err:        ErrUpstreamStatus,
		}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &EnrichmentError{Empresa: nome, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// upstreamMessage extracts the error field of a JSON failure body
func upstreamMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Error
}

type requestIDKey struct{}

// WithRequestID attaches a request id that outgoing calls forward
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
