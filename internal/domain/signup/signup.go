// Package signup models signup requests logged by the web tier and the admin
// approval flow that turns them into user accounts.
package signup

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/query"
)

// Request is one signup request row, upserted by email.
type Request struct {
	ID        uint
	PublicID  string
	Email     string
	Source    *string
	Message   *string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows request lookups.
type Filter struct {
	// Search matches email and source; escaped by the repository.
	Search *string
}

// Repository defines storage operations for signup requests.
type Repository interface {
	// UpsertByEmail creates the row or, when the email exists, bumps the
	// attempt counter and refreshes source/message.
	UpsertByEmail(ctx context.Context, r *Request) (*Request, error)
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Request, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindByPublicID(ctx context.Context, publicID string) (*Request, error)
	Delete(ctx context.Context, id uint) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
