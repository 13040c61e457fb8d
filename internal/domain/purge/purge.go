// Package purge implements the cascading user purge: an irreversible delete
// across every record category owned by a user, reporting per-category
// counts.
package purge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// ChatStore deletes a user's chats.
type ChatStore interface {
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// FeedbackStore deletes a user's feedback rows.
type FeedbackStore interface {
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

// EntityCascade is the slice of the entity layer the purge needs: strip the
// user from association lists and drop the entities left orphaned.
type EntityCascade interface {
	DisassociateUser(ctx context.Context, userPublicID string) ([]*entity.Entity, error)
	DeleteMany(ctx context.Context, ids []uint) (entities int64, memories int64, err error)
}

// TenantStore deletes the remaining owner-scoped record categories.
type TenantStore interface {
	DeleteWorkspaces(ctx context.Context, userID uint) (int64, error)
	DeleteTasks(ctx context.Context, userID uint) (int64, error)
	DeleteMedia(ctx context.Context, userID uint) (int64, error)
	DeleteMemberships(ctx context.Context, userID uint) (int64, error)
	DeletePrompts(ctx context.Context, userID uint) (int64, error)
}

// UserStore resolves and deletes the account itself.
type UserStore interface {
	FindByPublicID(ctx context.Context, publicID string) (*user.User, error)
	Delete(ctx context.Context, id uint) error
}

// Result maps record category to the number of rows removed.
type Result map[string]int64

// Purger coordinates the cascade. Categories are deleted independently, not
// in one transaction: a failure mid-purge leaves earlier categories deleted
// and reports how far it got.
type Purger struct {
	users    UserStore
	chats    ChatStore
	feedback FeedbackStore
	entities EntityCascade
	tenant   TenantStore
	log      zerolog.Logger
}

// NewPurger constructs a Purger with required dependencies.
func NewPurger(
	users UserStore,
	chats ChatStore,
	feedback FeedbackStore,
	entities EntityCascade,
	tenant TenantStore,
	log zerolog.Logger,
) *Purger {
	return &Purger{
		users:    users,
		chats:    chats,
		feedback: feedback,
		entities: entities,
		tenant:   tenant,
		log:      log,
	}
}

// PurgeUser deletes the user and every dependent record, returning
// per-category counts. On failure the partial counts accumulated so far are
// returned alongside the error.
func (p *Purger) PurgeUser(ctx context.Context, publicID string) (Result, error) {
	u, err := p.users.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"user not found", nil, "42d8f1a6-c035-4b9e-87d2-6e50c9b3f174")
	}

	result := Result{}

	step := func(category string, fn func() (int64, error)) error {
		n, err := fn()
		result[category] = n
		if err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "purge failed at "+category)
		}
		return nil
	}

	if err := step("chats", func() (int64, error) { return p.chats.DeleteByUser(ctx, u.ID) }); err != nil {
		return result, err
	}
	if err := step("workspaces", func() (int64, error) { return p.tenant.DeleteWorkspaces(ctx, u.ID) }); err != nil {
		return result, err
	}
	if err := step("tasks", func() (int64, error) { return p.tenant.DeleteTasks(ctx, u.ID) }); err != nil {
		return result, err
	}
	if err := step("media", func() (int64, error) { return p.tenant.DeleteMedia(ctx, u.ID) }); err != nil {
		return result, err
	}

	orphaned, err := p.entities.DisassociateUser(ctx, u.PublicID)
	if err != nil {
		return result, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "purge failed at entities")
	}
	ids := functional.Map(orphaned, func(e *entity.Entity) uint { return e.ID })
	deletedEntities, deletedMemories, err := p.entities.DeleteMany(ctx, ids)
	result["entities"] = deletedEntities
	result["memories"] = deletedMemories
	if err != nil {
		return result, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "purge failed at entities")
	}

	if err := step("memberships", func() (int64, error) { return p.tenant.DeleteMemberships(ctx, u.ID) }); err != nil {
		return result, err
	}
	if err := step("prompts", func() (int64, error) { return p.tenant.DeletePrompts(ctx, u.ID) }); err != nil {
		return result, err
	}
	if err := step("feedback", func() (int64, error) { return p.feedback.DeleteByUser(ctx, u.ID) }); err != nil {
		return result, err
	}

	if err := p.users.Delete(ctx, u.ID); err != nil {
		return result, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "purge failed deleting user record")
	}

	p.log.Info().Str("user_id", u.PublicID).Interface("results", result).Msg("purged user")
	return result, nil
}
