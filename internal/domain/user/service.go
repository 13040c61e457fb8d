package user

import (
	"context"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// Service exposes user listing and the admin role/block mutations.
type Service struct {
	repo Repository
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields for a new account.
type CreateInput struct {
	Username   string
	Email      *string
	Role       Role
	AgentModel *string
}

// Create persists a new user with a generated public ID.
func (s *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	if input.Username == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"username is required", nil, "5f0d2ab1-9c44-4e8a-b1d6-0f3c7a92e415")
	}
	role := input.Role
	if role == "" {
		role = RoleUser
	}
	if !role.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown role", nil, "88e5c317-2f6d-4b0a-a0c9-3de41f7b58a2")
	}

	u := &User{
		PublicID:   idgen.NewPublicID("user"),
		Username:   input.Username,
		Email:      input.Email,
		Role:       role,
		AgentModel: input.AgentModel,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns one page of users plus the total count for the filter.
func (s *Service) List(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*User, int64, error) {
	users, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetByPublicID resolves a user by public ID.
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*User, error) {
	u, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"user not found", nil, "e0a9d6c2-7b15-48f3-9d2e-6c4f81a03b57")
	}
	return u, nil
}

// SetRole mutates the role of a user.
func (s *Service) SetRole(ctx context.Context, publicID string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown role", nil, "3c4b81f6-0a9e-4d27-8b53-f12d60c7a984")
	}
	u, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}

// SetBlocked mutates the blocked flag of a user.
func (s *Service) SetBlocked(ctx context.Context, publicID string, blocked bool) (*User, error) {
	u, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBlocked(ctx, u.ID, blocked); err != nil {
		return nil, err
	}
	u.Blocked = blocked
	return u, nil
}
