package enrichment

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus marks a per-entity call answered with a non-2xx status
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// EnrichmentError is the failure of one per-entity call. Transport failures
// and non-success statuses both surface as this type.
type EnrichmentError struct {
	Empresa    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *EnrichmentError) Error() string {
	msg := fmt.Sprintf("Erro ao enriquecer %s", e.Empresa)
	switch {
	case e.StatusCode != 0:
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// ValidationError describes a malformed batch request
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
