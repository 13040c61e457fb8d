package chatrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database/dbschema"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

type ChatGormRepository struct {
	db *gorm.DB
}

var _ chat.Repository = (*ChatGormRepository)(nil)

func NewChatGormRepository(db *gorm.DB) chat.Repository {
	return &ChatGormRepository{db: db}
}

func (repo *ChatGormRepository) Create(ctx context.Context, c *chat.Chat) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		schemaChat := dbschema.NewSchemaChat(c)
		if err := tx.Create(schemaChat).Error; err != nil {
			return err
		}
		for i := range c.Messages {
			c.Messages[i].ChatID = schemaChat.ID
			schemaMessage := dbschema.NewSchemaChatMessage(&c.Messages[i])
			if err := tx.Create(schemaMessage).Error; err != nil {
				return err
			}
			c.Messages[i] = *schemaMessage.EtoD()
		}
		c.ID = schemaChat.ID
		c.CreatedAt = schemaChat.CreatedAt
		c.UpdatedAt = schemaChat.UpdatedAt
		return nil
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create chat",
			err,
			"17c4e9d5-2a80-4f36-b5d1-68f0c3a9e274",
		)
	}
	return nil
}

func (repo *ChatGormRepository) FindByFilter(ctx context.Context, filter chat.Filter, pagination *query.Pagination) ([]*chat.Chat, error) {
	var entities []dbschema.Chat
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
			"failed to find chats by filter",
			err,
			"90d5f2e8-3c17-4b60-a849-25e6d0c7f134",
		)
	}
	return functional.Map(entities, func(e dbschema.Chat) *chat.Chat { return e.EtoD() }), nil
}

func (repo *ChatGormRepository) Count(ctx context.Context, filter chat.Filter) (int64, error) {
	var count int64
	tx := repo.applyFilter(repo.db.WithContext(ctx).Model(&dbschema.Chat{}), filter)
	if err := tx.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count chats",
			err,
			"48a1c7f3-e692-4d05-b3a7-90c2e5d8f616",
		)
	}
	return count, nil
}

func (repo *ChatGormRepository) FindByPublicID(ctx context.Context, publicID string) (*chat.Chat, error) {
	return repo.findOne(ctx, "public_id = ?", publicID,
		"failed to find chat by public ID", "d63e0a84-51f9-4c27-8b05-37a1d9c2e458")
}

func (repo *ChatGormRepository) FindByShareSlug(ctx context.Context, slug string) (*chat.Chat, error) {
	return repo.findOne(ctx, "share_slug = ?", slug,
		"failed to find chat by share slug", "2f07b5d9-84c3-4e61-a2f8-c51d0e6a9b37")
}

func (repo *ChatGormRepository) findOne(ctx context.Context, cond string, arg any, msg, code string) (*chat.Chat, error) {
	var schemaChat dbschema.Chat
	err := repo.db.WithContext(ctx).
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id ASC")
		}).
		Where(cond, arg).
		First(&schemaChat).
		Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, msg, err, code)
	}
	return schemaChat.EtoD(), nil
}

func (repo *ChatGormRepository) Update(ctx context.Context, c *chat.Chat) error {
	schemaChat := dbschema.NewSchemaChat(c)
	result := repo.db.WithContext(ctx).
		Model(&dbschema.Chat{}).
		Where("id = ?", schemaChat.ID).
		Select("Title", "Public", "ShareSlug", "EntityID").
		Updates(schemaChat)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update chat",
			result.Error,
			"b59d2c70-e318-4f64-95a2-d67f0c1e8a43",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"chat not found", nil, "6e24a8d1-f905-4b73-8c6e-02d5f9a3c781")
	}
	return nil
}

func (repo *ChatGormRepository) Delete(ctx context.Context, id uint) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).
			Delete(&dbschema.ChatMessage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&dbschema.Chat{}).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete chat",
			err,
			"a81f6e05-39c2-4d87-b1f4-58e0c7d2a936",
		)
	}
	return nil
}

func (repo *ChatGormRepository) AddMessage(ctx context.Context, chatID uint, m *chat.Message) error {
	m.ChatID = chatID
	schemaMessage := dbschema.NewSchemaChatMessage(m)
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(schemaMessage).Error; err != nil {
			return err
		}
		// Touch the parent so recency ordering follows the last message.
		return tx.Model(&dbschema.Chat{}).
			Where("id = ?", chatID).
			Update("updated_at", gorm.Expr("NOW()")).Error
	})
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to add chat message",
			err,
			"304e9c7a-d2f5-4816-a0b9-6c38e1d5f072",
		)
	}
	*m = *schemaMessage.EtoD()
	return nil
}

func (repo *ChatGormRepository) DeleteMessages(ctx context.Context, chatID uint) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&dbschema.ChatMessage{})
	if result.Error != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete chat messages",
			result.Error,
			"7c50d1e9-a384-4f26-b7d0-91e2c6a5f843",
		)
	}
	return result.RowsAffected, nil
}

func (repo *ChatGormRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&dbschema.Chat{}).
			Where("user_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("chat_id IN ?", ids).
			Delete(&dbschema.ChatMessage{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&dbschema.Chat{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete chats for user",
			err,
			"f26b8d40-57e1-4a93-bc58-d09e3c7a1f65",
		)
	}
	return deleted, nil
}

func (repo *ChatGormRepository) applyFilter(tx *gorm.DB, filter chat.Filter) *gorm.DB {
	if filter.ID != nil {
		tx = tx.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		tx = tx.Where("public_id = ?", *filter.PublicID)
	}
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	if filter.EntityID != nil {
		tx = tx.Where("entity_id = ?", *filter.EntityID)
	}
	if filter.ShareSlug != nil {
		tx = tx.Where("share_slug = ?", *filter.ShareSlug)
	}
	return tx
}
