package feedbackrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/feedback"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
	"github.com/continuumhq/continuum-server/internal/utils/stringutils"
)

type FeedbackGormRepository struct {
	db *gorm.DB
}

var _ feedback.Repository = (*FeedbackGormRepository)(nil)

func NewFeedbackGormRepository(db *gorm.DB) feedback.Repository {
	return &FeedbackGormRepository{db: db}
}

func (repo *FeedbackGormRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	schemaFeedback := dbschema.NewSchemaFeedback(f)
	if err := repo.db.WithContext(ctx).Create(schemaFeedback).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create feedback",
			err,
			"8e63a1d7-f249-4c05-b7e8-13d9c0a6f452",
		)
	}
	*f = *schemaFeedback.EtoD()
	return nil
}

func (repo *FeedbackGormRepository) FindByFilter(ctx context.Context, filter feedback.Filter, pagination *query.Pagination) ([]*feedback.Feedback, error) {
	var entities []dbschema.Feedback
	tx := repo.applyFilter(repo.db.WithContext(ctx), filter)
	if pagination != nil {
		order := "created_at DESC"
		if !pagination.Descending() {
			order = "created_at ASC"
		}
		tx = tx.Order(order).
			Limit(pagination.LimitOrDefault(20, 100)).
			Offset(pagination.OffsetOrZero())
	}
	if err := tx.Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find feedback by filter",
			err,
			"5a91c4e0-d728-4f63-80b5-e62f3d0c9a17",
		)
	}
	return functional.Map(entities, func(e dbschema.Feedback) *feedback.Feedback { return e.EtoD() }), nil
}

func (repo *FeedbackGormRepository) Count(ctx context.Context, filter feedback.Filter) (int64, error) {
	var count int64
	tx := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.Feedback{}), filter)
	if err := tx.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count feedback",
			err,
			"c10f8b52-36e9-4d74-a1c8-59d0e7a2f386",
		)
	}
	return count, nil
}

func (repo *FeedbackGormRepository) DeleteByPublicID(ctx context.Context, publicID string) (bool, error) {
	result := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		Delete(&dbschema.Feedback{})
	if result.Error != nil {
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete feedback",
			result.Error,
			"e74d2a09-51c6-4b38-9f07-a8e3c5d1f620",
		)
	}
	return result.RowsAffected > 0, nil
}

func (repo *FeedbackGormRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&dbschema.Feedback{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete feedback for user",
			result.Error,
			"92b5e7c3-0ad8-4f16-b4e9-67c1d0a8f253",
		)
	}
	return result.RowsAffected, nil
}

func (repo *FeedbackGormRepository) applyFilter(tx *gorm.DB, filter feedback.Filter) *gorm.DB {
	if filter.Category != nil {
		tx = tx.Where("category = ?", *filter.Category)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := stringutils.EscapeRegex(*filter.Search)
		tx = tx.Where("category ~* ? OR message ~* ?", pattern, pattern)
	}
	return tx
}
