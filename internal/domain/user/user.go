// Package user provides user domain models and behaviors.
package user

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/query"
)

// Role is the application role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User models an application user. Session management lives in the web tier;
// this service owns the account record and its admin mutations.
type User struct {
	ID              uint
	PublicID        string
	Username        string
	Email           *string
	Role            Role
	Blocked         bool
	LastActiveAt    *time.Time
	DefaultEntityID *string
	AgentModel      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter narrows user lookups.
type Filter struct {
	ID       *uint
	PublicID *string
	Username *string
	Role     *Role
	Blocked  *bool
	// Search matches username and email, case-insensitively. The repository
	// escapes it before building a database pattern.
	Search *string
}

// Repository defines storage operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*User, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	FindByPublicID(ctx context.Context, publicID string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	UpdateRole(ctx context.Context, id uint, role Role) error
	UpdateBlocked(ctx context.Context, id uint, blocked bool) error
	TouchLastActive(ctx context.Context, id uint, at time.Time) error
	Delete(ctx context.Context, id uint) error
}
