// Package pulse exposes the wake-cycle logs written by the external
// life-loop scheduler. Logs are read-only through the API; this service only
// renders and, on a schedule, prunes them.
package pulse

import (
	"context"
	"time"
)

// Status is the outcome of one wake cycle.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	return s == StatusOK || s == StatusError || s == StatusSkipped
}

// Log is one wake-cycle record.
type Log struct {
	ID             uint
	EntityPublicID string
	Status         Status
	Summary        string
	DurationMS     int64
	StartedAt      time.Time
	CreatedAt      time.Time
}

// Filter narrows log queries.
type Filter struct {
	EntityPublicID *string
	Status         *Status
}

// EntityRef names an entity for the filter drop-down of the pulse screen.
type EntityRef struct {
	PublicID string `json:"id"`
	Name     string `json:"name"`
}

// Repository defines storage operations for pulse logs.
type Repository interface {
	Find(ctx context.Context, filter Filter, limit, offset int) ([]*Log, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// EntityLister supplies the entity references shown beside the logs.
type EntityLister interface {
	ListRefs(ctx context.Context) ([]EntityRef, error)
}

// Page is the pulse screen payload: one page of logs, the total for the
// filter, and the entities available for filtering.
type Page struct {
	Logs     []*Log
	Total    int64
	Entities []EntityRef
}

// Service reads and prunes pulse logs.
type Service struct {
	repo     Repository
	entities EntityLister
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, entities EntityLister) *Service {
	return &Service{repo: repo, entities: entities}
}

// List returns one page of logs with the filter total and entity references.
func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) (*Page, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	logs, err := s.repo.Find(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	refs, err := s.entities.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	return &Page{Logs: logs, Total: total, Entities: refs}, nil
}

// Prune deletes logs older than the retention window and reports the count.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-retention))
}
