package pulserepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

type PulseGormRepository struct {
	db *gorm.DB
}

var _ pulse.Repository = (*PulseGormRepository)(nil)

func NewPulseGormRepository(db *gorm.DB) pulse.Repository {
	return &PulseGormRepository{db: db}
}

func (repo *PulseGormRepository) Find(ctx context.Context, filter pulse.Filter, limit, offset int) ([]*pulse.Log, error) {
	var entities []dbschema.PulseLog
	err := repo.applyFilter(repo.db.WithContext(ctx), filter).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find pulse logs",
			err,
			"c38e5a91-d027-4f64-b1c5-70e9d4a2f863",
		)
	}
	return functional.Map(entities, func(e dbschema.PulseLog) *pulse.Log { return e.EtoD() }), nil
}

func (repo *PulseGormRepository) Count(ctx context.Context, filter pulse.Filter) (int64, error) {
	var count int64
	err := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.PulseLog{}), filter).
		Count(&count).
		Error
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count pulse logs",
			err,
			"6f01d8b4-e295-4c37-a8d0-53c7e1f9a246",
		)
	}
	return count, nil
}

func (repo *PulseGormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&dbschema.PulseLog{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to prune pulse logs",
			result.Error,
			"91c4a7e3-58d0-4b62-9f18-e2d6c0a5f397",
		)
	}
	return result.RowsAffected, nil
}

func (repo *PulseGormRepository) applyFilter(tx *gorm.DB, filter pulse.Filter) *gorm.DB {
	if filter.EntityPublicID != nil && *filter.EntityPublicID != "" {
		tx = tx.Where("entity_public_id = ?", *filter.EntityPublicID)
	}
	if filter.Status != nil && *filter.Status != "" {
		tx = tx.Where("status = ?", string(*filter.Status))
	}
	return tx
}
