package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"learnmap/internal/domain"
)

// ProviderError is any failure talking to a backend. It matches
// domain.ErrProvider, or domain.ErrTimeout when the call ran out of time.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("llm provider %s: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("llm provider %s unavailable", e.Provider)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool {
	if target == domain.ErrTimeout {
		return e.Timeout()
	}
	return target == domain.ErrProvider
}

func (e *ProviderError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// InvalidResponseError means the backend answered but not with usable JSON.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid llm response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

func (e *InvalidResponseError) Is(target error) bool {
	return target == domain.ErrProvider
}

func providerError(provider string, status int, err error) error {
	return &ProviderError{Provider: provider, StatusCode: status, Err: err}
}
