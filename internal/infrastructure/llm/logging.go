package llm

import (
	"context"
	"time"

	"learnmap/internal/pkg/logger"
)

type loggingProvider struct {
	Provider
}

// WithLogging logs every call with its latency and token usage.
func WithLogging(p Provider) Provider {
	return &loggingProvider{Provider: p}
}

func (p *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := p.Provider.Generate(ctx, req)

	log := logger.Component(ctx, "llm").
		WithField("provider", p.Name()).
		WithField("model", p.ModelID()).
		WithField("latency", time.Since(start))
	if err != nil {
		log.WithError(err).Warn("generate failed")
		return nil, err
	}
	log.WithField("input_tokens", resp.Usage.InputTokens).
		WithField("output_tokens", resp.Usage.OutputTokens).
		Debug("generate ok")
	return resp, nil
}
