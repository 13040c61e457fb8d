// Package feedback models the append-only user feedback records.
package feedback

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// Feedback is one submitted feedback row. Rows are append-only; the only
// mutation is the admin delete.
type Feedback struct {
	ID        uint
	PublicID  string
	UserID    *uint
	Category  string
	Message   string
	Rating    *int
	CreatedAt time.Time
}

// Filter narrows feedback lookups.
type Filter struct {
	Category *string
	// Search matches category and message; escaped by the repository.
	Search *string
}

// Repository defines storage operations for feedback.
type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Feedback, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	DeleteByPublicID(ctx context.Context, publicID string) (bool, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// Service owns feedback submission, listing, and the admin delete.
type Service struct {
	repo Repository
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit appends one feedback row.
func (s *Service) Submit(ctx context.Context, userID *uint, category, message string, rating *int) (*Feedback, error) {
	if message == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"feedback message is required", nil, "1f8a6d42-0c3e-47b9-8251-e96d04c7f3a8")
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"rating must be between 1 and 5", nil, "d40b39e8-57f1-4c26-a8d3-92c60e1b7f45")
	}

	f := &Feedback{
		PublicID: idgen.NewPublicID("fb"),
		UserID:   userID,
		Category: category,
		Message:  message,
		Rating:   rating,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// List returns one page of feedback plus the total count.
func (s *Service) List(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Feedback, int64, error) {
	rows, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Delete removes one feedback row.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	found, err := s.repo.DeleteByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if !found {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"feedback not found", nil, "73c0b2f9-8e46-4da1-b5c7-f08e29d1a634")
	}
	return nil
}
