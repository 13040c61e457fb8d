package entityrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
	"github.com/continuumhq/continuum-server/internal/utils/stringutils"
)

type EntityGormRepository struct {
	db *gorm.DB
}

var _ entity.Repository = (*EntityGormRepository)(nil)

func NewEntityGormRepository(db *gorm.DB) entity.Repository {
	return &EntityGormRepository{db: db}
}

func (repo *EntityGormRepository) Create(ctx context.Context, e *entity.Entity) error {
	schemaEntity := dbschema.NewSchemaEntity(e)
	if err := repo.db.WithContext(ctx).Create(schemaEntity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create entity",
			err,
			"47f2e8b1-6a93-4c50-bd72-8e14f9c6a035",
		)
	}
	*e = *schemaEntity.EtoD()
	return nil
}

func (repo *EntityGormRepository) Update(ctx context.Context, e *entity.Entity) error {
	schemaEntity := dbschema.NewSchemaEntity(e)
	result := repo.db.WithContext(ctx).
		Model(&dbschema.Entity{}).
		Where("id = ?", schemaEntity.ID).
		Select("Name", "Description", "AssocUserIDs", "Model", "ModelOverride",
			"ReasoningEffort", "Tools", "Voice", "Pulse").
		Updates(schemaEntity)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update entity",
			result.Error,
			"9bd034e7-5f28-4c61-a93b-e2d7f018c549",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"entity not found", nil, "1c6a95d2-e874-40fb-b3c0-57d92ae8f416")
	}
	return nil
}

func (repo *EntityGormRepository) FindByFilter(ctx context.Context, filter entity.Filter, pagination *query.Pagination) ([]*entity.Entity, error) {
	var entities []dbschema.Entity
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
			"failed to find entities by filter",
			err,
			"72a8e4f0-913c-4db6-8a5e-c06f1d29b783",
		)
	}
	return functional.Map(entities, func(e dbschema.Entity) *entity.Entity { return e.EtoD() }), nil
}

func (repo *EntityGormRepository) FindByPublicID(ctx context.Context, publicID string) (*entity.Entity, error) {
	var schemaEntity dbschema.Entity
	err := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&schemaEntity).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find entity by public ID",
			err,
			"e5d17b93-2f60-4a84-bc28-90a3f6e1d457",
		)
	}
	return schemaEntity.EtoD(), nil
}

func (repo *EntityGormRepository) FindSystemDefault(ctx context.Context) (*entity.Entity, error) {
	var schemaEntity dbschema.Entity
	err := repo.db.WithContext(ctx).
		Where("is_system = ?", true).
		Order("id ASC").
		First(&schemaEntity).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find system default entity",
			err,
			"0f84c6a2-d591-4e37-8b60-a1c2e9d5f738",
		)
	}
	return schemaEntity.EtoD(), nil
}

func (repo *EntityGormRepository) FindOrphaned(ctx context.Context) ([]*entity.Entity, error) {
	var entities []dbschema.Entity
	// Orphaned means non-system with an empty association list. NULL columns
	// predate the jsonb default and count as empty too.
	err := repo.db.WithContext(ctx).
		Where("is_system = ?", false).
		Where("assoc_user_ids IS NULL OR assoc_user_ids = '[]'::jsonb").
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find orphaned entities",
			err,
			"3a92d7e5-81c0-4f6b-9d14-e7b5028c4a61",
		)
	}
	return functional.Map(entities, func(e dbschema.Entity) *entity.Entity { return e.EtoD() }), nil
}

func (repo *EntityGormRepository) ListSummaries(ctx context.Context) ([]*entity.Summary, error) {
	var entities []dbschema.Entity
	if err := repo.db.WithContext(ctx).
		Order("is_system DESC, created_at ASC").
		Find(&entities).
		Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list entities",
			err,
			"b6e03f91-47ad-4c28-85f6-d920c7a1e543",
		)
	}

	type countRow struct {
		EntityID uint
		Count    int64
	}
	var counts []countRow
	if err := repo.db.WithContext(ctx).
		Model(&dbschema.ContinuityMemory{}).
		Select("entity_id, COUNT(*) AS count").
		Group("entity_id").
		Scan(&counts).
		Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count memories per entity",
			err,
			"c71d5e28-09b4-4f63-a8d0-4e96b2f7c815",
		)
	}
	byEntity := make(map[uint]int64, len(counts))
	for _, row := range counts {
		byEntity[row.EntityID] = row.Count
	}

	return functional.Map(entities, func(e dbschema.Entity) *entity.Summary {
		return &entity.Summary{Entity: *e.EtoD(), MemoryCount: byEntity[e.ID]}
	}), nil
}

func (repo *EntityGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&dbschema.Entity{}).
		Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete entity",
			err,
			"d94f2c80-6e17-4ba5-93c2-f58a01e7d364",
		)
	}
	return nil
}

func (repo *EntityGormRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&dbschema.Entity{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete entities",
			result.Error,
			"a05e8d13-72f9-4c46-b8a1-39c6e4d2f790",
		)
	}
	return result.RowsAffected, nil
}

func (repo *EntityGormRepository) applyFilter(tx *gorm.DB, filter entity.Filter) *gorm.DB {
	if filter.ID != nil {
		tx = tx.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		tx = tx.Where("public_id = ?", *filter.PublicID)
	}
	if filter.IsSystem != nil {
		tx = tx.Where("is_system = ?", *filter.IsSystem)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := stringutils.EscapeRegex(*filter.Search)
		tx = tx.Where("name ~* ? OR description ~* ?", pattern, pattern)
	}
	return tx
}
