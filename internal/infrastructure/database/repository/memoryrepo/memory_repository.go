package memoryrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/memory"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

type MemoryGormRepository struct {
	db *gorm.DB
}

var _ memory.Repository = (*MemoryGormRepository)(nil)

func NewMemoryGormRepository(db *gorm.DB) memory.Repository {
	return &MemoryGormRepository{db: db}
}

func (repo *MemoryGormRepository) ListByEntity(ctx context.Context, entityID uint) ([]*memory.Memory, error) {
	var entities []dbschema.ContinuityMemory
	err := repo.db.WithContext(ctx).
		Where("entity_id = ?", entityID).
		Order("occurred_at DESC, id DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list memories for entity",
			err,
			"6b42d8f1-a930-4c75-8e26-d10f9c3e5a84",
		)
	}
	return functional.Map(entities, func(e dbschema.ContinuityMemory) *memory.Memory { return e.EtoD() }), nil
}

func (repo *MemoryGormRepository) Create(ctx context.Context, m *memory.Memory) error {
	schemaMemory := dbschema.NewSchemaContinuityMemory(m)
	if err := repo.db.WithContext(ctx).Create(schemaMemory).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create memory",
			err,
			"f30c7e95-21d8-4a64-b5f2-08e4d9a1c736",
		)
	}
	*m = *schemaMemory.EtoD()
	return nil
}

func (repo *MemoryGormRepository) Update(ctx context.Context, m *memory.Memory) error {
	schemaMemory := dbschema.NewSchemaContinuityMemory(m)
	result := repo.db.WithContext(ctx).
		Model(&dbschema.ContinuityMemory{}).
		Where("entity_id = ? AND public_id = ?", schemaMemory.EntityID, schemaMemory.PublicID).
		Select("Type", "Content", "Importance", "Tags", "Embedding", "OccurredAt").
		Updates(schemaMemory)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update memory",
			result.Error,
			"84d1f6a3-5e09-4b27-9c85-f2d73a0e1c46",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"memory not found", nil, "2e95c0d7-4816-4f3a-b692-80c5d1e7f923")
	}
	return nil
}

func (repo *MemoryGormRepository) FindByPublicID(ctx context.Context, entityID uint, publicID string) (*memory.Memory, error) {
	var schemaMemory dbschema.ContinuityMemory
	err := repo.db.WithContext(ctx).
		Where("entity_id = ? AND public_id = ?", entityID, publicID).
		First(&schemaMemory).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find memory by public ID",
			err,
			"9a63e2d0-8c47-4f15-b3a8-16d0f5c4e972",
		)
	}
	return schemaMemory.EtoD(), nil
}

func (repo *MemoryGormRepository) Delete(ctx context.Context, entityID uint, publicID string) error {
	result := repo.db.WithContext(ctx).
		Where("entity_id = ? AND public_id = ?", entityID, publicID).
		Delete(&dbschema.ContinuityMemory{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete memory",
			result.Error,
			"c25a9f18-3d60-4e74-82b9-5f01e7d3a684",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"memory not found", nil, "71e8b4c6-05d2-49f3-a716-c93d2e8f0b45")
	}
	return nil
}

func (repo *MemoryGormRepository) ReplaceForEntity(ctx context.Context, entityID uint, memories []*memory.Memory) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ?", entityID).
			Delete(&dbschema.ContinuityMemory{}).Error; err != nil {
			return err
		}
		if len(memories) == 0 {
			return nil
		}
		rows := functional.Map(memories, func(m *memory.Memory) *dbschema.ContinuityMemory {
			return dbschema.NewSchemaContinuityMemory(m)
		})
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to replace memories for entity",
			err,
			"e04d6c29-f851-4a37-b0e8-29c7d5f1a863",
		)
	}
	return nil
}

func (repo *MemoryGormRepository) DeleteForEntities(ctx context.Context, entityIDs []uint) (int64, error) {
	if len(entityIDs) == 0 {
		return 0, nil
	}
	result := repo.db.WithContext(ctx).
		Where("entity_id IN ?", entityIDs).
		Delete(&dbschema.ContinuityMemory{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete memories for entities",
			result.Error,
			"5d38a0f7-62c9-4e14-8b53-a7f2c6d1e098",
		)
	}
	return result.RowsAffected, nil
}

func (repo *MemoryGormRepository) CountByEntity(ctx context.Context, entityID uint) (int64, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&dbschema.ContinuityMemory{}).
		Where("entity_id = ?", entityID).
		Count(&count).
		Error
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count memories for entity",
			err,
			"b87f3d52-10e6-4c98-a2d4-6e09c5a8f127",
		)
	}
	return count, nil
}
