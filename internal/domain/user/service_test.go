package user_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/user"
)

type fakeRepository struct {
	rows   []*user.User
	nextID uint
}

func (f *fakeRepository) Create(_ context.Context, u *user.User) error {
	f.nextID++
	u.ID = f.nextID
	f.rows = append(f.rows, u)
	return nil
}

func (f *fakeRepository) FindByFilter(_ context.Context, filter user.Filter, _ *query.Pagination) ([]*user.User, error) {
	var out []*user.User
	for _, u := range f.rows {
		if filter.Search != nil && !strings.Contains(u.Username, *filter.Search) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeRepository) Count(ctx context.Context, filter user.Filter) (int64, error) {
	rows, _ := f.FindByFilter(ctx, filter, nil)
	return int64(len(rows)), nil
}

func (f *fakeRepository) FindByPublicID(_ context.Context, publicID string) (*user.User, error) {
	for _, u := range f.rows {
		if u.PublicID == publicID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.rows {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) UpdateRole(_ context.Context, id uint, role user.Role) error {
	for _, u := range f.rows {
		if u.ID == id {
			u.Role = role
		}
	}
	return nil
}

func (f *fakeRepository) UpdateBlocked(_ context.Context, id uint, blocked bool) error {
	for _, u := range f.rows {
		if u.ID == id {
			u.Blocked = blocked
		}
	}
	return nil
}

func (f *fakeRepository) TouchLastActive(_ context.Context, id uint, at time.Time) error {
	for _, u := range f.rows {
		if u.ID == id {
			u.LastActiveAt = &at
		}
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uint) error {
	for i, u := range f.rows {
		if u.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestCreate(t *testing.T) {
	repo := &fakeRepository{}
	svc := user.NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, user.CreateInput{Username: "ada@example.com"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.PublicID, "user_"))
	assert.Equal(t, user.RoleUser, u.Role, "role defaults to user")

	_, err = svc.Create(ctx, user.CreateInput{})
	assert.Error(t, err, "username is required")

	_, err = svc.Create(ctx, user.CreateInput{Username: "x", Role: "superuser"})
	assert.Error(t, err, "unknown role is rejected")
}

func TestSetRole(t *testing.T) {
	repo := &fakeRepository{}
	svc := user.NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, user.CreateInput{Username: "ada"})
	require.NoError(t, err)

	promoted, err := svc.SetRole(ctx, u.PublicID, user.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, promoted.Role)
	assert.Equal(t, user.RoleAdmin, repo.rows[0].Role)

	_, err = svc.SetRole(ctx, u.PublicID, "superuser")
	assert.Error(t, err)

	_, err = svc.SetRole(ctx, "user_ghost", user.RoleAdmin)
	assert.Error(t, err)
}

func TestSetBlocked(t *testing.T) {
	repo := &fakeRepository{}
	svc := user.NewService(repo)
	ctx := context.Background()

	u, err := svc.Create(ctx, user.CreateInput{Username: "ada"})
	require.NoError(t, err)

	blocked, err := svc.SetBlocked(ctx, u.PublicID, true)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	unblocked, err := svc.SetBlocked(ctx, u.PublicID, false)
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)
}

func TestList(t *testing.T) {
	repo := &fakeRepository{}
	svc := user.NewService(repo)
	ctx := context.Background()

	for _, name := range []string{"ada", "grace", "adrian"} {
		_, err := svc.Create(ctx, user.CreateInput{Username: name})
		require.NoError(t, err)
	}

	search := "ad"
	rows, total, err := svc.List(ctx, user.Filter{Search: &search}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)
}
