// Package memory models continuity memories: persisted notes attached to an
// entity that represent its long-term context.
package memory

import (
	"context"
	"time"
)

// Type classifies a continuity memory.
type Type string

const (
	TypeCore       Type = "CORE"
	TypeAnchor     Type = "ANCHOR"
	TypeEpisode    Type = "EPISODE"
	TypeFact       Type = "FACT"
	TypeReflection Type = "REFLECTION"
)

// Valid reports whether the type is one of the known values.
func (t Type) Valid() bool {
	switch t {
	case TypeCore, TypeAnchor, TypeEpisode, TypeFact, TypeReflection:
		return true
	}
	return false
}

// Memory is one continuity note owned by exactly one entity.
type Memory struct {
	ID         uint
	PublicID   string
	EntityID   uint
	Type       Type
	Content    string
	Importance int
	Tags       []string
	Embedding  []float64
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Repository defines storage operations for memories.
type Repository interface {
	ListByEntity(ctx context.Context, entityID uint) ([]*Memory, error)
	Create(ctx context.Context, m *Memory) error
	Update(ctx context.Context, m *Memory) error
	FindByPublicID(ctx context.Context, entityID uint, publicID string) (*Memory, error)
	Delete(ctx context.Context, entityID uint, publicID string) error
	// ReplaceForEntity atomically swaps the entity's whole collection.
	ReplaceForEntity(ctx context.Context, entityID uint, memories []*Memory) error
	DeleteForEntities(ctx context.Context, entityIDs []uint) (int64, error)
	CountByEntity(ctx context.Context, entityID uint) (int64, error)
}
