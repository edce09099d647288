package provider

import (
	"context"
	"errors"
	"time"
)

// Provider is a pluggable content-generation backend. Implementations must
// be safe for concurrent use.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
	Probe(ctx context.Context) bool
}

// GeneratedContent is the raw output of one successful provider call.
// It is consumed immediately (parsed or rendered) and never persisted as-is.
type GeneratedContent struct {
	RawText      string
	ProviderName string
	GeneratedAt  time.Time
}

// ErrAllExhausted reports that every configured provider failed for one
// request. Callers should abandon the request rather than degrade.
var ErrAllExhausted = errors.New("all providers exhausted")

// ErrNoProviders reports an orchestrator constructed with no providers.
var ErrNoProviders = errors.New("no providers configured")
