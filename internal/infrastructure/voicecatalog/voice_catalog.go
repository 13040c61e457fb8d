// Package voicecatalog lists the synthesized voices available to entities.
package voicecatalog

import (
	"context"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/utils/httpclients"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// Voice is one catalog entry, normalized from the provider response.
type Voice struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	PreviewURL  string   `json:"previewUrl,omitempty"`
	Description string   `json:"description,omitempty"`
}

type elevenVoice struct {
	VoiceID     string            `json:"voice_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Labels      map[string]string `json:"labels"`
	PreviewURL  string            `json:"preview_url"`
	Description string            `json:"description"`
}

type elevenVoicesResponse struct {
	Voices []elevenVoice `json:"voices"`
}

// Client fetches the ElevenLabs voice list.
type Client struct {
	http   *resty.Client
	apiKey string
}

// NewClient constructs a Client for the given ElevenLabs endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	http := httpclients.NewClient("elevenlabs").
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: http, apiKey: apiKey}
}

// List returns the available voices.
func (c *Client) List(ctx context.Context) ([]Voice, error) {
	start := time.Now()

	var raw elevenVoicesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("xi-api-key", c.apiKey).
		SetResult(&raw).
		Get("/v1/voices")
	if err != nil {
		metrics.RecordUpstream("elevenlabs", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "voice catalog request failed", err,
			"85c2f7d0-e361-4a94-b5c8-02d9e6a3f817")
	}
	metrics.RecordUpstream("elevenlabs", strconv.Itoa(resp.StatusCode()), time.Since(start).Seconds())
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "voice catalog returned "+resp.Status(), nil,
			"39e0d4a6-7c52-4f18-a3b9-61f8c0d5e274")
	}

	voices := make([]Voice, 0, len(raw.Voices))
	for _, v := range raw.Voices {
		labels := make([]string, 0, len(v.Labels))
		for k, val := range v.Labels {
			labels = append(labels, k+":"+val)
		}
		voices = append(voices, Voice{
			ID:          v.VoiceID,
			Name:        v.Name,
			Category:    v.Category,
			Labels:      labels,
			PreviewURL:  v.PreviewURL,
			Description: v.Description,
		})
	}
	return voices, nil
}
