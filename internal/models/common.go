package models

import (
	"time"
)

// ErrorResponse represents an error response for the operational endpoints
type ErrorResponse struct {
	Error     string    `json:"error" example:"Not Found"`
	Message   string    `json:"message" example:"The requested resource was not found"`
	Code      string    `json:"code,omitempty" example:"CACHE_KEY_NOT_FOUND"`
	Timestamp time.Time `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Path      string    `json:"path" example:"/api/v1/cache/enriquecimento:abc"`
}

// FailureResponse is the body returned by the enrichment endpoints when a
// request cannot be served
type FailureResponse struct {
	Success    bool   `json:"success" example:"false"`
	Error      string `json:"error" example:"Parâmetro obrigatório: empresas (array não vazio)"`
	RetryAfter int    `json:"retryAfter,omitempty" example:"60"`
}

// NewFailure builds a FailureResponse
func NewFailure(message string) FailureResponse {
	return FailureResponse{Success: false, Error: message}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Timestamp time.Time              `json:"timestamp" example:"2024-01-15T10:30:00Z"`
	Version   string                 `json:"version" example:"1.0.0"`
	Services  map[string]ServiceInfo `json:"services"`
	Uptime    string                 `json:"uptime" example:"2h30m45s"`
}

// ServiceInfo represents individual service health
type ServiceInfo struct {
	Status         string    `json:"status" example:"healthy"`
	LastCheck      time.Time `json:"last_check" example:"2024-01-15T10:30:00Z"`
	ResponseTimeMs int64     `json:"response_time_ms" example:"3"`
	Error          string    `json:"error,omitempty"`
}
