// Package chat models assistant conversations: ordered message sequences
// owned by a user and bound to exactly one entity.
package chat

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/query"
)

// Message is one entry in a chat.
type Message struct {
	ID        uint
	PublicID  string
	ChatID    uint
	Role      string
	Content   string
	CreatedAt time.Time
}

// Chat is an ordered message sequence. EntityID is never zero: creation
// without an explicit entity falls back to the default system entity.
type Chat struct {
	ID        uint
	PublicID  string
	UserID    uint
	EntityID  uint
	Title     *string
	Public    bool
	ShareSlug *string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows chat lookups.
type Filter struct {
	ID        *uint
	PublicID  *string
	UserID    *uint
	EntityID  *uint
	ShareSlug *string
}

// Repository defines storage operations for chats and their messages.
type Repository interface {
	Create(ctx context.Context, c *Chat) error
	FindByFilter(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Chat, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// FindByPublicID loads the chat with its messages in order.
	FindByPublicID(ctx context.Context, publicID string) (*Chat, error)
	FindByShareSlug(ctx context.Context, slug string) (*Chat, error)
	Update(ctx context.Context, c *Chat) error
	Delete(ctx context.Context, id uint) error
	AddMessage(ctx context.Context, chatID uint, m *Message) error
	DeleteMessages(ctx context.Context, chatID uint) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
