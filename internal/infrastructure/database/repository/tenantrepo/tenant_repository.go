package tenantrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// TenantGormRepository deletes the owner-scoped record categories that have
// no domain package of their own. Only the purge cascade uses it.
type TenantGormRepository struct {
	db *gorm.DB
}

var _ purge.TenantStore = (*TenantGormRepository)(nil)

func NewTenantGormRepository(db *gorm.DB) purge.TenantStore {
	return &TenantGormRepository{db: db}
}

func (repo *TenantGormRepository) DeleteWorkspaces(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&dbschema.Workspace{}).
			Where("user_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("workspace_id IN ?", ids).
				Delete(&dbschema.Membership{}).Error; err != nil {
				return err
			}
		}
		result := tx.Where("user_id = ?", userID).Delete(&dbschema.Workspace{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete workspaces for user",
			err,
			"0a72e5c8-f391-4d46-b2a0-67d1c9e4f583",
		)
	}
	return deleted, nil
}

func (repo *TenantGormRepository) DeleteTasks(ctx context.Context, userID uint) (int64, error) {
	return repo.deleteByUser(ctx, userID, &dbschema.Task{},
		"failed to delete tasks for user", "58d3c0f1-6e94-4a27-85b3-f20c7d1e9a46")
}

func (repo *TenantGormRepository) DeleteMedia(ctx context.Context, userID uint) (int64, error) {
	return repo.deleteByUser(ctx, userID, &dbschema.MediaObject{},
		"failed to delete media for user", "b14f9e62-07d5-4c83-a6f1-92e0d5c8a337")
}

func (repo *TenantGormRepository) DeleteMemberships(ctx context.Context, userID uint) (int64, error) {
	return repo.deleteByUser(ctx, userID, &dbschema.Membership{},
		"failed to delete memberships for user", "e90c2d57-a148-4f36-b0d9-35c8e6a1f724")
}

func (repo *TenantGormRepository) DeletePrompts(ctx context.Context, userID uint) (int64, error) {
	return repo.deleteByUser(ctx, userID, &dbschema.Prompt{},
		"failed to delete prompts for user", "37a6e1d0-c582-4b94-8e27-d05f9c3a2b61")
}

func (repo *TenantGormRepository) deleteByUser(ctx context.Context, userID uint, model any, msg, code string) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(model)
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, msg, result.Error, code)
	}
	return result.RowsAffected, nil
}
