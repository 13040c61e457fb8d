package chat

import (
	"context"
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// EntityResolver is the slice of the entity layer the chat service needs to
// honor the one-entity-per-chat invariant.
type EntityResolver interface {
	GetByPublicID(ctx context.Context, publicID string) (*entity.Entity, error)
	EnsureSystemDefault(ctx context.Context) (*entity.Entity, error)
}

// Service owns chat lifecycle: create, copy, share, clear, export.
type Service struct {
	repo     Repository
	entities EntityResolver
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, entities EntityResolver) *Service {
	return &Service{repo: repo, entities: entities}
}

// CreateInput carries the fields for a new chat.
type CreateInput struct {
	UserID         uint
	EntityPublicID *string
	Title          *string
}

// Create persists a new chat. When no entity is named the default system
// entity is used, so the chat always references exactly one entity.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Chat, error) {
	var ent *entity.Entity
	var err error
	if input.EntityPublicID != nil && *input.EntityPublicID != "" {
		ent, err = s.entities.GetByPublicID(ctx, *input.EntityPublicID)
	} else {
		ent, err = s.entities.EnsureSystemDefault(ctx)
	}
	if err != nil {
		return nil, err
	}

	c := &Chat{
		PublicID: idgen.NewPublicID("chat"),
		UserID:   input.UserID,
		EntityID: ent.ID,
		Title:    input.Title,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns one page of the user's chats plus the total count.
func (s *Service) List(ctx context.Context, userID uint, pagination *query.Pagination) ([]*Chat, int64, error) {
	filter := Filter{UserID: &userID}
	chats, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return chats, total, nil
}

// getOwned loads a chat and verifies ownership.
func (s *Service) getOwned(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	c, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"chat not found", nil, "2d94f7b0-5e18-4ca6-93d2-7f60a1c8e435")
	}
	if c.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"chat belongs to another user", nil, "8c03e6d1-f47a-492b-b5e8-61d20c9f7a34")
	}
	return c, nil
}

// Get loads an owned chat with its messages.
func (s *Service) Get(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	return s.getOwned(ctx, userID, publicID)
}

// AddMessage appends one message to an owned chat.
func (s *Service) AddMessage(ctx context.Context, userID uint, publicID, role, content string) (*Message, error) {
	if content == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message content is required", nil, "e17b20c9-4a6f-4d83-95e1-c02d8f6b37a5")
	}
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		PublicID: idgen.NewPublicID("msg"),
		ChatID:   c.ID,
		Role:     role,
		Content:  content,
	}
	if err := s.repo.AddMessage(ctx, c.ID, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Copy duplicates an owned chat, messages included, under a fresh identity.
// The copy is never shared, whatever the source was.
func (s *Service) Copy(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	src, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	dup := &Chat{
		PublicID: idgen.NewPublicID("chat"),
		UserID:   src.UserID,
		EntityID: src.EntityID,
		Title:    src.Title,
	}
	if err := s.repo.Create(ctx, dup); err != nil {
		return nil, err
	}
	for _, m := range src.Messages {
		if err := s.repo.AddMessage(ctx, dup.ID, &Message{
			PublicID: idgen.NewPublicID("msg"),
			ChatID:   dup.ID,
			Role:     m.Role,
			Content:  m.Content,
		}); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByPublicID(ctx, dup.PublicID)
}

// Share flags the chat public and assigns a share slug when missing.
func (s *Service) Share(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	if c.ShareSlug == nil {
		slug := idgen.NewPublicID("share")
		c.ShareSlug = &slug
	}
	c.Public = true
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Unshare clears the public flag and drops the slug, invalidating old links.
func (s *Service) Unshare(ctx context.Context, userID uint, publicID string) (*Chat, error) {
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	c.Public = false
	c.ShareSlug = nil
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetShared resolves a publicly shared chat by slug; no ownership check.
func (s *Service) GetShared(ctx context.Context, slug string) (*Chat, error) {
	c, err := s.repo.FindByShareSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.Public {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"shared chat not found", nil, "a6e95d03-71c8-4f2b-bd60-9e4c23f8a017")
	}
	return c, nil
}

// Clear deletes every message of an owned chat but keeps the chat itself.
func (s *Service) Clear(ctx context.Context, userID uint, publicID string) (int64, error) {
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return 0, err
	}
	return s.repo.DeleteMessages(ctx, c.ID)
}

// Delete removes an owned chat and its messages.
func (s *Service) Delete(ctx context.Context, userID uint, publicID string) error {
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, c.ID)
}

// ExportSnapshot is the serialized form of a chat export. It is a
// point-in-time snapshot; edits in flight after the read are not reflected.
type ExportSnapshot struct {
	ID         string          `json:"id"`
	Title      *string         `json:"title,omitempty"`
	ExportedAt time.Time       `json:"exportedAt"`
	Messages   []ExportMessage `json:"messages"`
}

// ExportMessage is one message inside an export snapshot.
type ExportMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Export serializes an owned chat.
func (s *Service) Export(ctx context.Context, userID uint, publicID string) (*ExportSnapshot, error) {
	c, err := s.getOwned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}
	snap := &ExportSnapshot{
		ID:         c.PublicID,
		Title:      c.Title,
		ExportedAt: time.Now().UTC(),
		Messages:   make([]ExportMessage, 0, len(c.Messages)),
	}
	for _, m := range c.Messages {
		snap.Messages = append(snap.Messages, ExportMessage{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return snap, nil
}
