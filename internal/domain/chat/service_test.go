package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/query"
)

// fakeRepository stores chats and messages in memory.
type fakeRepository struct {
	chats  []*chat.Chat
	nextID uint
}

func (f *fakeRepository) Create(_ context.Context, c *chat.Chat) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now().UTC()
	f.chats = append(f.chats, c)
	return nil
}

func (f *fakeRepository) FindByFilter(_ context.Context, filter chat.Filter, _ *query.Pagination) ([]*chat.Chat, error) {
	var out []*chat.Chat
	for _, c := range f.chats {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepository) Count(_ context.Context, filter chat.Filter) (int64, error) {
	rows, _ := f.FindByFilter(context.Background(), filter, nil)
	return int64(len(rows)), nil
}

func (f *fakeRepository) FindByPublicID(_ context.Context, publicID string) (*chat.Chat, error) {
	for _, c := range f.chats {
		if c.PublicID == publicID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindByShareSlug(_ context.Context, slug string) (*chat.Chat, error) {
	for _, c := range f.chats {
		if c.ShareSlug != nil && *c.ShareSlug == slug {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) Update(_ context.Context, c *chat.Chat) error {
	for i, existing := range f.chats {
		if existing.ID == c.ID {
			f.chats[i] = c
			return nil
		}
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uint) error {
	for i, c := range f.chats {
		if c.ID == id {
			f.chats = append(f.chats[:i], f.chats[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepository) AddMessage(_ context.Context, chatID uint, m *chat.Message) error {
	for _, c := range f.chats {
		if c.ID == chatID {
			m.ID = uint(len(c.Messages) + 1)
			m.CreatedAt = time.Now().UTC()
			c.Messages = append(c.Messages, *m)
			return nil
		}
	}
	return nil
}

func (f *fakeRepository) DeleteMessages(_ context.Context, chatID uint) (int64, error) {
	for _, c := range f.chats {
		if c.ID == chatID {
			n := int64(len(c.Messages))
			c.Messages = nil
			return n, nil
		}
	}
	return 0, nil
}

func (f *fakeRepository) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	var n int64
	kept := f.chats[:0]
	for _, c := range f.chats {
		if c.UserID == userID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.chats = kept
	return n, nil
}

// fakeEntities resolves a fixed entity set and a system default.
type fakeEntities struct {
	system   entity.Entity
	byPublic map[string]*entity.Entity
}

func (f *fakeEntities) GetByPublicID(_ context.Context, publicID string) (*entity.Entity, error) {
	if e, ok := f.byPublic[publicID]; ok {
		return e, nil
	}
	return nil, errors.New("entity not found")
}

func (f *fakeEntities) EnsureSystemDefault(_ context.Context) (*entity.Entity, error) {
	return &f.system, nil
}

func newService() (*chat.Service, *fakeRepository) {
	repo := &fakeRepository{}
	entities := &fakeEntities{
		system: entity.Entity{ID: 1, PublicID: "ent_system", IsSystem: true},
		byPublic: map[string]*entity.Entity{
			"ent_custom": {ID: 2, PublicID: "ent_custom"},
		},
	}
	return chat.NewService(repo, entities), repo
}

func TestCreate_DefaultsToSystemEntity(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10})
	require.NoError(t, err)
	assert.Equal(t, uint(1), c.EntityID, "missing entity falls back to the system default")

	custom := "ent_custom"
	c, err = svc.Create(ctx, chat.CreateInput{UserID: 10, EntityPublicID: &custom})
	require.NoError(t, err)
	assert.Equal(t, uint(2), c.EntityID)

	missing := "ent_missing"
	_, err = svc.Create(ctx, chat.CreateInput{UserID: 10, EntityPublicID: &missing})
	assert.Error(t, err)
}

func TestOwnershipGuard(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10})
	require.NoError(t, err)

	_, err = svc.Get(ctx, 10, c.PublicID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, 11, c.PublicID)
	assert.Error(t, err, "another user cannot read the chat")

	_, err = svc.AddMessage(ctx, 11, c.PublicID, "user", "hi")
	assert.Error(t, err)

	assert.Error(t, svc.Delete(ctx, 11, c.PublicID))
}

func TestCopy_FreshIdentityAndNeverShared(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	title := "Plans"
	src, err := svc.Create(ctx, chat.CreateInput{UserID: 10, Title: &title})
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, 10, src.PublicID, "user", "hello")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, 10, src.PublicID, "assistant", "hi there")
	require.NoError(t, err)
	_, err = svc.Share(ctx, 10, src.PublicID)
	require.NoError(t, err)

	dup, err := svc.Copy(ctx, 10, src.PublicID)
	require.NoError(t, err)
	assert.NotEqual(t, src.PublicID, dup.PublicID)
	assert.Equal(t, src.EntityID, dup.EntityID)
	assert.Equal(t, "Plans", *dup.Title)
	assert.False(t, dup.Public, "the copy is never shared")
	assert.Nil(t, dup.ShareSlug)

	require.Len(t, dup.Messages, 2)
	assert.Equal(t, "hello", dup.Messages[0].Content)
	assert.NotEqual(t, "", dup.Messages[0].PublicID)
	assert.Len(t, repo.chats, 2)
}

func TestShareLifecycle(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10})
	require.NoError(t, err)

	shared, err := svc.Share(ctx, 10, c.PublicID)
	require.NoError(t, err)
	require.NotNil(t, shared.ShareSlug)
	assert.True(t, shared.Public)
	slug := *shared.ShareSlug

	// Re-sharing keeps the existing slug stable.
	again, err := svc.Share(ctx, 10, c.PublicID)
	require.NoError(t, err)
	assert.Equal(t, slug, *again.ShareSlug)

	got, err := svc.GetShared(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, c.PublicID, got.PublicID)

	unshared, err := svc.Unshare(ctx, 10, c.PublicID)
	require.NoError(t, err)
	assert.False(t, unshared.Public)
	assert.Nil(t, unshared.ShareSlug)

	_, err = svc.GetShared(ctx, slug)
	assert.Error(t, err, "old links die on unshare")
}

func TestClear_KeepsChat(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10})
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, 10, c.PublicID, "user", "one")
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, 10, c.PublicID, "user", "two")
	require.NoError(t, err)

	deleted, err := svc.Clear(ctx, 10, c.PublicID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	require.Len(t, repo.chats, 1)
	assert.Empty(t, repo.chats[0].Messages)
}

func TestExport_Snapshot(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	title := "Notes"
	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10, Title: &title})
	require.NoError(t, err)
	_, err = svc.AddMessage(ctx, 10, c.PublicID, "user", "remember this")
	require.NoError(t, err)

	snap, err := svc.Export(ctx, 10, c.PublicID)
	require.NoError(t, err)
	assert.Equal(t, c.PublicID, snap.ID)
	assert.Equal(t, "Notes", *snap.Title)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "remember this", snap.Messages[0].Content)
	assert.WithinDuration(t, time.Now().UTC(), snap.ExportedAt, time.Minute)

	_, err = svc.AddMessage(ctx, 10, c.PublicID, "user", "after the export")
	require.NoError(t, err)
	assert.Len(t, snap.Messages, 1, "snapshot does not track later edits")
}

func TestAddMessage_RequiresContent(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	c, err := svc.Create(ctx, chat.CreateInput{UserID: 10})
	require.NoError(t, err)

	_, err = svc.AddMessage(ctx, 10, c.PublicID, "user", "")
	assert.Error(t, err)
}
