package userrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
	"github.com/continuumhq/continuum-server/internal/utils/stringutils"
)

type UserGormRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *gorm.DB) user.Repository {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) Create(ctx context.Context, u *user.User) error {
	schemaUser := dbschema.NewSchemaUser(u)
	if err := repo.db.WithContext(ctx).Create(schemaUser).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create user",
			err,
			"8c1f5a27-4b3d-4e69-90f2-d175c8a4e6b3",
		)
	}
	*u = *schemaUser.EtoD()
	return nil
}

func (repo *UserGormRepository) FindByFilter(ctx context.Context, filter user.Filter, pagination *query.Pagination) ([]*user.User, error) {
	var entities []dbschema.User
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
			"failed to find users by filter",
			err,
			"5e2d9c48-7f01-4ab3-bc56-9e83d1f2a740",
		)
	}
	return functional.Map(entities, func(e dbschema.User) *user.User { return e.EtoD() }), nil
}

func (repo *UserGormRepository) Count(ctx context.Context, filter user.Filter) (int64, error) {
	var count int64
	tx := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.User{}), filter)
	if err := tx.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count users",
			err,
			"b94c7e15-2d80-4f6a-a3c9-1785e0d4b2f6",
		)
	}
	return count, nil
}

func (repo *UserGormRepository) FindByPublicID(ctx context.Context, publicID string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user by public ID",
			err,
			"d03a8f61-95c4-47eb-8b27-f4a61c9e0d58",
		)
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("username = ?", username).
		First(&entity).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find user by username",
			err,
			"f61b2e84-30da-49c7-95e1-8d2a70c4b396",
		)
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) UpdateRole(ctx context.Context, id uint, role user.Role) error {
	return repo.updateColumn(ctx, id, "role", string(role), "failed to update user role",
		"a27e4d90-6c15-483b-b8f2-03d9c5e1a674")
}

func (repo *UserGormRepository) UpdateBlocked(ctx context.Context, id uint, blocked bool) error {
	return repo.updateColumn(ctx, id, "blocked", blocked, "failed to update user blocked flag",
		"c58f1b36-9a42-4d07-8e63-b720d4f9c1a5")
}

func (repo *UserGormRepository) TouchLastActive(ctx context.Context, id uint, at time.Time) error {
	return repo.updateColumn(ctx, id, "last_active_at", at, "failed to touch last active timestamp",
		"1d7a3f58-b026-4c91-8e45-a9c2d5e0f713")
}

func (repo *UserGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&dbschema.User{}).
		Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete user",
			err,
			"e849c2d7-16f3-45a8-b091-7c3e5d8a2f64",
		)
	}
	return nil
}

func (repo *UserGormRepository) updateColumn(ctx context.Context, id uint, column string, value any, msg, code string) error {
	result := repo.db.WithContext(ctx).
		Model(&dbschema.User{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			msg, result.Error, code)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"user not found", nil, code)
	}
	return nil
}

func (repo *UserGormRepository) applyFilter(tx *gorm.DB, filter user.Filter) *gorm.DB {
	if filter.ID != nil {
		tx = tx.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		tx = tx.Where("public_id = ?", *filter.PublicID)
	}
	if filter.Username != nil {
		tx = tx.Where("username = ?", *filter.Username)
	}
	if filter.Role != nil {
		tx = tx.Where("role = ?", string(*filter.Role))
	}
	if filter.Blocked != nil {
		tx = tx.Where("blocked = ?", *filter.Blocked)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := stringutils.EscapeRegex(*filter.Search)
		tx = tx.Where("username ~* ? OR email ~* ?", pattern, pattern)
	}
	return tx
}
