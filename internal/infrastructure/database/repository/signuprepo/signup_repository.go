package signuprepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
	"github.com/continuumhq/continuum-server/internal/utils/stringutils"
)

type SignupGormRepository struct {
	db *gorm.DB
}

var _ signup.Repository = (*SignupGormRepository)(nil)

func NewSignupGormRepository(db *gorm.DB) signup.Repository {
	return &SignupGormRepository{db: db}
}

func (repo *SignupGormRepository) UpsertByEmail(ctx context.Context, r *signup.Request) (*signup.Request, error) {
	schemaRequest := dbschema.NewSchemaSignupRequest(r)

	assignments := map[string]any{
		"source":     schemaRequest.Source,
		"message":    schemaRequest.Message,
		"attempts":   gorm.Expr("continuum.signup_requests.attempts + 1"),
		"updated_at": gorm.Expr("NOW()"),
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(schemaRequest).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert signup request",
			err,
			"41f7c2e8-93d5-4a60-b817-26e9d0c3f584",
		)
	}

	var persisted dbschema.SignupRequest
	if err := repo.db.WithContext(ctx).
		Where("email = ?", schemaRequest.Email).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to reload upserted signup request",
			err,
			"7d25e0a9-48c1-4f73-92b6-e03f8c5d1a47",
		)
	}
	return persisted.EtoD(), nil
}

func (repo *SignupGormRepository) FindByFilter(ctx context.Context, filter signup.Filter, pagination *query.Pagination) ([]*signup.Request, error) {
	var entities []dbschema.SignupRequest
	tx := repo.applyFilter(repo.db.WithContext(ctx), filter)
	if pagination != nil {
		order := "updated_at DESC"
		if !pagination.Descending() {
			order = "updated_at ASC"
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
			"failed to find signup requests",
			err,
			"0c84f6d2-a175-4e39-b0c4-58d2e9a7f316",
		)
	}
	return functional.Map(entities, func(e dbschema.SignupRequest) *signup.Request { return e.EtoD() }), nil
}

func (repo *SignupGormRepository) Count(ctx context.Context, filter signup.Filter) (int64, error) {
	var count int64
	tx := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.SignupRequest{}), filter)
	if err := tx.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count signup requests",
			err,
			"69b3d7e1-52f0-4c48-a9d6-e17c0f4a2b85",
		)
	}
	return count, nil
}

func (repo *SignupGormRepository) FindByPublicID(ctx context.Context, publicID string) (*signup.Request, error) {
	var schemaRequest dbschema.SignupRequest
	err := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&schemaRequest).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find signup request by public ID",
			err,
			"f58a0c31-d964-4b27-85f0-c21e7d9a3e64",
		)
	}
	return schemaRequest.EtoD(), nil
}

func (repo *SignupGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&dbschema.SignupRequest{}).
		Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete signup request",
			err,
			"2d70b9f4-e816-4a53-90c7-f36a1e8d5c02",
		)
	}
	return nil
}

func (repo *SignupGormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&dbschema.SignupRequest{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to prune signup requests",
			result.Error,
			"ae19d5c7-0342-4f68-b95d-81c6e2f0a734",
		)
	}
	return result.RowsAffected, nil
}

func (repo *SignupGormRepository) applyFilter(tx *gorm.DB, filter signup.Filter) *gorm.DB {
	if filter.Search != nil && *filter.Search != "" {
		pattern := stringutils.EscapeRegex(*filter.Search)
		tx = tx.Where("email ~* ? OR source ~* ?", pattern, pattern)
	}
	return tx
}
