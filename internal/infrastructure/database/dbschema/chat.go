package dbschema

import (
	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Chat{})
	database.RegisterSchemaForAutoMigrate(ChatMessage{})
}

// Chat represents the persisted chat schema.
type Chat struct {
	BaseModel
	PublicID  string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID    uint    `gorm:"index;not null"`
	User      User    `gorm:"foreignKey:UserID"`
	EntityID  uint    `gorm:"index;not null"`
	Entity    Entity  `gorm:"foreignKey:EntityID"`
	Title     *string `gorm:"type:varchar(256)"`
	Public    bool    `gorm:"not null;default:false"`
	ShareSlug *string `gorm:"type:varchar(64);uniqueIndex"`

	Messages []ChatMessage `gorm:"foreignKey:ChatID"`
}

// ChatMessage represents one persisted message row.
type ChatMessage struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	ChatID   uint   `gorm:"index;not null"`
	Role     string `gorm:"type:varchar(20);not null"`
	Content  string `gorm:"type:text;not null"`
}

// NewSchemaChat converts a domain chat into a schema instance. Messages are
// managed through their own rows and are not carried along.
func NewSchemaChat(c *chat.Chat) *Chat {
	if c == nil {
		return nil
	}
	return &Chat{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID:  c.PublicID,
		UserID:    c.UserID,
		EntityID:  c.EntityID,
		Title:     c.Title,
		Public:    c.Public,
		ShareSlug: c.ShareSlug,
	}
}

// NewSchemaChatMessage converts a domain message into a schema instance.
func NewSchemaChatMessage(m *chat.Message) *ChatMessage {
	if m == nil {
		return nil
	}
	return &ChatMessage{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		PublicID: m.PublicID,
		ChatID:   m.ChatID,
		Role:     m.Role,
		Content:  m.Content,
	}
}

// EtoD converts a schema chat back to the domain representation, including
// any preloaded messages.
func (c *Chat) EtoD() *chat.Chat {
	if c == nil {
		return nil
	}
	return &chat.Chat{
		ID:        c.ID,
		PublicID:  c.PublicID,
		UserID:    c.UserID,
		EntityID:  c.EntityID,
		Title:     c.Title,
		Public:    c.Public,
		ShareSlug: c.ShareSlug,
		Messages: functional.Map(c.Messages, func(m ChatMessage) chat.Message {
			return *m.EtoD()
		}),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// EtoD converts a schema message back to the domain representation.
func (m *ChatMessage) EtoD() *chat.Message {
	if m == nil {
		return nil
	}
	return &chat.Message{
		ID:        m.ID,
		PublicID:  m.PublicID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
