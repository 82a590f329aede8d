// Package ai dispatches embedding requests to the provider selected by an
// embedding config.
package ai

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	ollamaembed "github.com/custodia-labs/sercha-notes/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-notes/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-notes/internal/core/domain"
	"github.com/custodia-labs/sercha-notes/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.EmbeddingClient   = (*Client)(nil)
	_ driven.AIConfigValidator = (*Client)(nil)
)

// pingTimeout bounds a connectivity check.
const pingTimeout = 10 * time.Second

type serviceFactory func(cfg domain.EmbeddingConfig) (driven.EmbeddingService, error)

type cachedService struct {
	cfg domain.EmbeddingConfig
	svc driven.EmbeddingService
}

// Client embeds text with whichever provider a config names.
// One service is kept per config id and rebuilt when the config changes.
type Client struct {
	mu             sync.Mutex
	services       map[string]cachedService
	limiter        *rate.Limiter
	fallbackAPIKey string
	newService     serviceFactory
}

// Option configures a Client.
type Option func(*Client)

// WithFallbackAPIKey sets the key used by configs whose api_key is empty.
func WithFallbackAPIKey(key string) Option {
	return func(c *Client) {
		c.fallbackAPIKey = key
	}
}

// WithRequestsPerSecond throttles Embed calls. Zero or less disables it.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(math.Ceil(rps))
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient creates an embedding client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		services: make(map[string]cachedService),
	}
	c.newService = c.CreateEmbeddingService
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the vector for text using the provider behind cfg.
func (c *Client) Embed(ctx context.Context, text string, cfg domain.EmbeddingConfig) ([]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
		}
	}

	svc, err := c.service(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}

	vec, err := svc.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
	}
	return vec, nil
}

// ValidateEmbedding pings the provider behind cfg with a fresh service.
func (c *Client) ValidateEmbedding(ctx context.Context, cfg domain.EmbeddingConfig) error {
	svc, err := c.newService(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	return svc.Ping(ctx)
}

// CreateEmbeddingService builds the provider adapter for cfg.
func (c *Client) CreateEmbeddingService(cfg domain.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.EffectiveProvider() {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.APIURL,
			Model:   cfg.ModelName,
		}), nil

	case domain.AIProviderOpenAI:
		key := cfg.APIKey
		if key == "" {
			key = c.fallbackAPIKey
		}
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  key,
			BaseURL: cfg.APIURL,
			Model:   cfg.ModelName,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// Close releases every cached service.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, cached := range c.services {
		_ = cached.svc.Close()
		delete(c.services, id)
	}
	return nil
}

func (c *Client) service(cfg domain.EmbeddingConfig) (driven.EmbeddingService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.services[cfg.ID]; ok {
		if cached.cfg == cfg {
			return cached.svc, nil
		}
		_ = cached.svc.Close()
		delete(c.services, cfg.ID)
	}

	svc, err := c.newService(cfg)
	if err != nil {
		return nil, err
	}
	c.services[cfg.ID] = cachedService{cfg: cfg, svc: svc}
	return svc, nil
}
