// Package modelcatalog lists the agent models offered by the configured
// OpenAI-compatible endpoint.
package modelcatalog

import (
	"context"
	"sort"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

const cacheTTL = 5 * time.Minute

// Model is one catalog entry.
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"ownedBy,omitempty"`
	Created int64  `json:"created,omitempty"`
}

// Client fetches and caches the upstream model list. The list changes
// rarely, so a short TTL cache keeps the catalog off the hot path.
type Client struct {
	api *openai.Client

	mu        sync.Mutex
	cached    []Model
	fetchedAt time.Time
}

// NewClient constructs a Client against the given OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

// List returns the available models, sorted by ID.
func (c *Client) List(ctx context.Context) ([]Model, error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.fetchedAt) < cacheTTL {
		models := c.cached
		c.mu.Unlock()
		return models, nil
	}
	c.mu.Unlock()

	resp, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "model catalog request failed", err,
			"d46a0e83-29c7-4f51-b8d2-60e5c1a9f372")
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, Model{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
			Created: m.CreatedAt,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	c.mu.Lock()
	c.cached = models
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return models, nil
}
