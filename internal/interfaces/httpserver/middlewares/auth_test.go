package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/middlewares"
)

// fakeUsers resolves users by public ID and records activity touches.
type fakeUsers struct {
	byPublic map[string]*user.User
	touched  map[uint]time.Time
}

func (f *fakeUsers) Create(_ context.Context, _ *user.User) error { return nil }
func (f *fakeUsers) FindByFilter(_ context.Context, _ user.Filter, _ *query.Pagination) ([]*user.User, error) {
	return nil, nil
}
func (f *fakeUsers) Count(_ context.Context, _ user.Filter) (int64, error) { return 0, nil }
func (f *fakeUsers) FindByPublicID(_ context.Context, publicID string) (*user.User, error) {
	return f.byPublic[publicID], nil
}
func (f *fakeUsers) FindByUsername(_ context.Context, _ string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUsers) UpdateRole(_ context.Context, _ uint, _ user.Role) error { return nil }
func (f *fakeUsers) UpdateBlocked(_ context.Context, _ uint, _ bool) error   { return nil }
func (f *fakeUsers) Delete(_ context.Context, _ uint) error                  { return nil }
func (f *fakeUsers) TouchLastActive(_ context.Context, id uint, at time.Time) error {
	if f.touched == nil {
		f.touched = make(map[uint]time.Time)
	}
	f.touched[id] = at
	return nil
}

func newAuthRouter(t *testing.T, users *fakeUsers, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := append([]gin.HandlerFunc{middlewares.Auth("s3cret", users)}, extra...)
	group := router.Group("/", chain...)
	group.GET("/whoami", func(c *gin.Context) {
		principal, ok := middlewares.PrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"principal": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal.PublicID})
	})
	return router
}

func doWhoami(router *gin.Engine, secret, actingUser string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if secret != "" {
		req.Header.Set("X-Auth-Secret", secret)
	}
	if actingUser != "" {
		req.Header.Set("X-Acting-User", actingUser)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	users := &fakeUsers{byPublic: map[string]*user.User{
		"user_ok":      {ID: 1, PublicID: "user_ok", Role: user.RoleUser},
		"user_blocked": {ID: 2, PublicID: "user_blocked", Blocked: true},
	}}
	router := newAuthRouter(t, users)

	t.Run("missing secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doWhoami(router, "", "").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doWhoami(router, "wrong", "").Code)
	})

	t.Run("secret without user passes anonymously", func(t *testing.T) {
		rec := doWhoami(router, "s3cret", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"principal":null`)
	})

	t.Run("unknown user", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doWhoami(router, "s3cret", "user_ghost").Code)
	})

	t.Run("blocked user", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, doWhoami(router, "s3cret", "user_blocked").Code)
	})

	t.Run("known user becomes principal", func(t *testing.T) {
		rec := doWhoami(router, "s3cret", "user_ok")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"principal":"user_ok"`)
	})
}

func TestAuth_TouchesLastActive(t *testing.T) {
	users := &fakeUsers{byPublic: map[string]*user.User{
		"user_ok": {ID: 1, PublicID: "user_ok", Role: user.RoleUser},
	}}
	router := newAuthRouter(t, users)

	before := time.Now().UTC()
	require.Equal(t, http.StatusOK, doWhoami(router, "s3cret", "user_ok").Code)

	at, ok := users.touched[1]
	require.True(t, ok, "authenticated request must touch the activity timestamp")
	assert.False(t, at.Before(before))

	// Anonymous secret-tier requests resolve no user and touch nothing.
	require.Equal(t, http.StatusOK, doWhoami(router, "s3cret", "").Code)
	assert.Len(t, users.touched, 1)
}

func TestRequirePrincipal(t *testing.T) {
	users := &fakeUsers{byPublic: map[string]*user.User{
		"user_ok": {ID: 1, PublicID: "user_ok", Role: user.RoleUser},
	}}
	router := newAuthRouter(t, users, middlewares.RequirePrincipal())

	assert.Equal(t, http.StatusUnauthorized, doWhoami(router, "s3cret", "").Code)
	assert.Equal(t, http.StatusOK, doWhoami(router, "s3cret", "user_ok").Code)
}

func TestRequireAdmin(t *testing.T) {
	users := &fakeUsers{byPublic: map[string]*user.User{
		"user_admin": {ID: 1, PublicID: "user_admin", Role: user.RoleAdmin},
		"user_plain": {ID: 2, PublicID: "user_plain", Role: user.RoleUser},
	}}
	router := newAuthRouter(t, users, middlewares.RequireAdmin())

	t.Run("no principal", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doWhoami(router, "s3cret", "").Code)
	})

	t.Run("non-admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, doWhoami(router, "s3cret", "user_plain").Code)
	})

	t.Run("admin", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, doWhoami(router, "s3cret", "user_admin").Code)
	})

	t.Run("bypass skips the role check", func(t *testing.T) {
		t.Setenv("ADMIN_BYPASS", "true")
		assert.Equal(t, http.StatusOK, doWhoami(router, "s3cret", "").Code)
	})
}
