// Package entity models the configurable AI personas ("entities") of the
// assistant: each carries its own model preference, tool allow-list, voice
// configuration, and pulse (periodic wake) schedule.
package entity

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/query"
)

// ReasoningEffort selects how much deliberation the agent model spends.
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// Valid reports whether the effort is one of the known levels.
func (r ReasoningEffort) Valid() bool {
	switch r {
	case ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
		return true
	}
	return false
}

// VoiceConfig selects the synthesized voice of an entity.
type VoiceConfig struct {
	Provider   string  `json:"provider"`
	VoiceID    string  `json:"voice_id"`
	Stability  float64 `json:"stability,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// PulseSchedule configures the periodic wake of an entity. The wake cycles
// themselves run in the external life-loop scheduler; this service only
// stores the schedule and renders the resulting logs.
type PulseSchedule struct {
	Cron    string `json:"cron"`
	Enabled bool   `json:"enabled"`
}

// Entity is a named agent configuration.
type Entity struct {
	ID              uint
	PublicID        string
	Name            string
	Description     *string
	IsSystem        bool
	AssocUserIDs    []string
	Model           string
	ModelOverride   *string
	ReasoningEffort ReasoningEffort
	Tools           []string
	Voice           *VoiceConfig
	Pulse           *PulseSchedule
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Orphaned reports whether the entity is purge-eligible: non-system with no
// associated users.
func (e *Entity) Orphaned() bool {
	return !e.IsSystem && len(e.AssocUserIDs) == 0
}

// EffectiveModel returns the override when set, the preferred model otherwise.
func (e *Entity) EffectiveModel() string {
	if e.ModelOverride != nil && *e.ModelOverride != "" {
		return *e.ModelOverride
	}
	return e.Model
}

// Summary is an entity together with its memory count, as rendered by the
// admin entity screen.
type Summary struct {
	Entity
	MemoryCount int64
}

// Filter narrows entity lookups.
type Filter struct {
	ID       *uint
	PublicID *string
	IsSystem *bool
	// Search matches name and description; escaped by the repository.
	Search *string
}

// Repository defines storage operations for entities.
type Repository interface {
	Create(ctx context.Context, e *Entity) error
	Update(ctx context.Context, e *Entity) error
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Entity, error)
	FindByPublicID(ctx context.Context, publicID string) (*Entity, error)
	FindSystemDefault(ctx context.Context) (*Entity, error)
	FindOrphaned(ctx context.Context) ([]*Entity, error)
	ListSummaries(ctx context.Context) ([]*Summary, error)
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
}
