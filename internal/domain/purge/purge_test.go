package purge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/domain/user"
)

type fakeUsers struct {
	u       *user.User
	deleted bool
}

func (f *fakeUsers) FindByPublicID(_ context.Context, publicID string) (*user.User, error) {
	if f.u != nil && f.u.PublicID == publicID {
		return f.u, nil
	}
	return nil, nil
}

func (f *fakeUsers) Delete(_ context.Context, _ uint) error {
	f.deleted = true
	return nil
}

type countStore struct {
	kind   string
	counts map[string]int64
	fail   string
}

func (c *countStore) take(category string) (int64, error) {
	if c.fail == category {
		return 0, errors.New(category + " delete failed")
	}
	n := c.counts[category]
	delete(c.counts, category)
	return n, nil
}

func (c *countStore) DeleteByUser(_ context.Context, _ uint) (int64, error) {
	return c.take(c.kind)
}

type chatStore struct{ *countStore }
type feedbackStore struct{ *countStore }

type tenantStore struct{ *countStore }

func (t tenantStore) DeleteWorkspaces(_ context.Context, _ uint) (int64, error) {
	return t.take("workspaces")
}
func (t tenantStore) DeleteTasks(_ context.Context, _ uint) (int64, error) { return t.take("tasks") }
func (t tenantStore) DeleteMedia(_ context.Context, _ uint) (int64, error) { return t.take("media") }
func (t tenantStore) DeleteMemberships(_ context.Context, _ uint) (int64, error) {
	return t.take("memberships")
}
func (t tenantStore) DeletePrompts(_ context.Context, _ uint) (int64, error) {
	return t.take("prompts")
}

type entityCascade struct {
	orphans       []*entity.Entity
	memoriesPer   int64
	disassocErr   error
	deletedIDs    []uint
	deleteManyErr error
}

func (e *entityCascade) DisassociateUser(_ context.Context, _ string) ([]*entity.Entity, error) {
	return e.orphans, e.disassocErr
}

func (e *entityCascade) DeleteMany(_ context.Context, ids []uint) (int64, int64, error) {
	if e.deleteManyErr != nil {
		return 0, 0, e.deleteManyErr
	}
	e.deletedIDs = ids
	return int64(len(ids)), int64(len(ids)) * e.memoriesPer, nil
}

func TestPurgeUser_ReportsPerCategoryCounts(t *testing.T) {
	users := &fakeUsers{u: &user.User{ID: 9, PublicID: "user_doomed"}}
	chats := chatStore{&countStore{kind: "chats", counts: map[string]int64{"chats": 4}}}
	feedback := feedbackStore{&countStore{kind: "feedback", counts: map[string]int64{"feedback": 2}}}
	tenant := tenantStore{&countStore{counts: map[string]int64{
		"workspaces": 1, "tasks": 5, "media": 3, "memberships": 1, "prompts": 2,
	}}}
	entities := &entityCascade{
		orphans:     []*entity.Entity{{ID: 21}, {ID: 22}},
		memoriesPer: 10,
	}

	p := purge.NewPurger(users, chats, feedback, entities, tenant, zerolog.Nop())
	result, err := p.PurgeUser(context.Background(), "user_doomed")
	require.NoError(t, err)

	assert.Equal(t, purge.Result{
		"chats":       4,
		"workspaces":  1,
		"tasks":       5,
		"media":       3,
		"entities":    2,
		"memories":    20,
		"memberships": 1,
		"prompts":     2,
		"feedback":    2,
	}, result)
	assert.Equal(t, []uint{21, 22}, entities.deletedIDs)
	assert.True(t, users.deleted)
}

func TestPurgeUser_UnknownUser(t *testing.T) {
	p := purge.NewPurger(&fakeUsers{}, chatStore{&countStore{kind: "chats"}},
		feedbackStore{&countStore{kind: "feedback"}}, &entityCascade{},
		tenantStore{&countStore{}}, zerolog.Nop())

	_, err := p.PurgeUser(context.Background(), "user_ghost")
	assert.Error(t, err)
}

// A failure mid-cascade must surface the error together with the counts of
// every category already deleted.
func TestPurgeUser_PartialFailure(t *testing.T) {
	users := &fakeUsers{u: &user.User{ID: 9, PublicID: "user_doomed"}}
	chats := chatStore{&countStore{kind: "chats", counts: map[string]int64{"chats": 4}}}
	feedback := feedbackStore{&countStore{kind: "feedback", counts: map[string]int64{"feedback": 2}}}
	tenant := tenantStore{&countStore{
		counts: map[string]int64{"workspaces": 1, "tasks": 5},
		fail:   "media",
	}}
	entities := &entityCascade{}

	p := purge.NewPurger(users, chats, feedback, entities, tenant, zerolog.Nop())
	result, err := p.PurgeUser(context.Background(), "user_doomed")
	require.Error(t, err)

	assert.Equal(t, int64(4), result["chats"])
	assert.Equal(t, int64(1), result["workspaces"])
	assert.Equal(t, int64(5), result["tasks"])
	_, ran := result["feedback"]
	assert.False(t, ran, "categories after the failure never run")
	assert.False(t, users.deleted, "user record survives a partial purge")
}
