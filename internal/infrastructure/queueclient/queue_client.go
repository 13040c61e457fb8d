// Package queueclient proxies the external job-queue service, normalizing
// its loosely-typed job payloads at the boundary.
package queueclient

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/utils/httpclients"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// BlobKind tags the shape of a job payload or return value.
type BlobKind string

const (
	BlobKindString BlobKind = "string"
	BlobKindArray  BlobKind = "array"
	BlobKindObject BlobKind = "object"
)

// Blob is the normalized form of a payload: exactly one of the value fields
// is set, selected by Kind. Upstream emits these as raw JSON of any shape;
// normalizing here keeps type inspection out of every consumer.
type Blob struct {
	Kind   BlobKind          `json:"kind"`
	Text   string            `json:"text,omitempty"`
	Items  []json.RawMessage `json:"items,omitempty"`
	Object json.RawMessage   `json:"object,omitempty"`
}

// NormalizeBlob converts one raw upstream value into its tagged form.
// Scalars that are not strings are rendered as their JSON text.
func NormalizeBlob(raw json.RawMessage) Blob {
	trimmed := []byte(raw)
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t' || trimmed[0] == '\n' || trimmed[0] == '\r') {
		trimmed = trimmed[1:]
	}
	if len(trimmed) == 0 {
		return Blob{Kind: BlobKindString}
	}
	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			return Blob{Kind: BlobKindArray, Items: items}
		}
	case '{':
		return Blob{Kind: BlobKindObject, Object: raw}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return Blob{Kind: BlobKindString, Text: s}
		}
	}
	return Blob{Kind: BlobKindString, Text: string(trimmed)}
}

// Job is one queue job after normalization.
type Job struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Payload     Blob       `json:"payload"`
	ReturnValue *Blob      `json:"returnValue,omitempty"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"createdAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Worker is one registered queue worker.
type Worker struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// Pagination echoes the upstream window back to the caller.
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// Stats is the queue dashboard payload.
type Stats struct {
	Counts     map[string]int64 `json:"counts"`
	Workers    []Worker         `json:"workers"`
	Jobs       []Job            `json:"jobs"`
	Pagination Pagination       `json:"pagination"`
}

// Query selects the job window returned alongside the queue counts.
type Query struct {
	Limit  int
	Offset int
	Status string
	Search string
}

// upstream wire shapes, before normalization.
type rawJob struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	Payload     json.RawMessage `json:"payload"`
	ReturnValue json.RawMessage `json:"returnValue"`
	Attempts    int             `json:"attempts"`
	CreatedAt   time.Time       `json:"createdAt"`
	FinishedAt  *time.Time      `json:"finishedAt"`
}

type rawStats struct {
	Counts     map[string]int64 `json:"counts"`
	Workers    []Worker         `json:"workers"`
	Jobs       []rawJob         `json:"jobs"`
	Pagination Pagination       `json:"pagination"`
}

// Client fetches queue stats from the external queue service.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

// NewClient constructs a Client for the given queue service endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	http := httpclients.NewClient("queue-api").
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: http, baseURL: baseURL, apiKey: apiKey}
}

// Stats fetches one page of queue state, normalizing every job blob.
func (c *Client) Stats(ctx context.Context, q Query) (*Stats, error) {
	start := time.Now()

	var raw rawStats
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(q.Limit)).
		SetQueryParam("offset", strconv.Itoa(q.Offset)).
		SetResult(&raw)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}
	if q.Status != "" {
		req.SetQueryParam("status", q.Status)
	}
	if q.Search != "" {
		req.SetQueryParam("search", q.Search)
	}

	resp, err := req.Get("/api/queues/stats")
	if err != nil {
		metrics.RecordUpstream("queue", "error", time.Since(start).Seconds())
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "queue service request failed", err,
			"4d80e7c2-1af5-4b39-96d8-c30e5a1f7d26")
	}
	metrics.RecordUpstream("queue", strconv.Itoa(resp.StatusCode()), time.Since(start).Seconds())
	if resp.IsError() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "queue service returned "+resp.Status(), nil,
			"a37c1e90-6d54-4f28-b0a3-18e6d2c9f475")
	}

	stats := &Stats{
		Counts:     raw.Counts,
		Workers:    raw.Workers,
		Jobs:       make([]Job, 0, len(raw.Jobs)),
		Pagination: raw.Pagination,
	}
	if stats.Counts == nil {
		stats.Counts = map[string]int64{}
	}
	for _, j := range raw.Jobs {
		job := Job{
			ID:         j.ID,
			Name:       j.Name,
			Status:     j.Status,
			Payload:    NormalizeBlob(j.Payload),
			Attempts:   j.Attempts,
			CreatedAt:  j.CreatedAt,
			FinishedAt: j.FinishedAt,
		}
		if len(j.ReturnValue) > 0 && string(j.ReturnValue) != "null" {
			rv := NormalizeBlob(j.ReturnValue)
			job.ReturnValue = &rv
		}
		stats.Jobs = append(stats.Jobs, job)
	}
	return stats, nil
}
