package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/handlers"
)

// stubUsers backs a user.Service whose methods the test never reaches.
type stubUsers struct{ user.Repository }

type purgeUserStore struct {
	u       *user.User
	deleted bool
}

func (s *purgeUserStore) FindByPublicID(_ context.Context, publicID string) (*user.User, error) {
	if s.u != nil && s.u.PublicID == publicID {
		return s.u, nil
	}
	return nil, nil
}

func (s *purgeUserStore) Delete(_ context.Context, _ uint) error {
	s.deleted = true
	return nil
}

// fixedCounts serves as both chat and feedback store.
type fixedCounts struct{ n int64 }

func (s fixedCounts) DeleteByUser(_ context.Context, _ uint) (int64, error) { return s.n, nil }

type noCascade struct{}

func (noCascade) DisassociateUser(_ context.Context, _ string) ([]*entity.Entity, error) {
	return nil, nil
}
func (noCascade) DeleteMany(_ context.Context, _ []uint) (int64, int64, error) { return 0, 0, nil }

type fixedTenant struct{ workspaces, tasks, media, memberships, prompts int64 }

func (s fixedTenant) DeleteWorkspaces(_ context.Context, _ uint) (int64, error) {
	return s.workspaces, nil
}
func (s fixedTenant) DeleteTasks(_ context.Context, _ uint) (int64, error) { return s.tasks, nil }
func (s fixedTenant) DeleteMedia(_ context.Context, _ uint) (int64, error) { return s.media, nil }
func (s fixedTenant) DeleteMemberships(_ context.Context, _ uint) (int64, error) {
	return s.memberships, nil
}
func (s fixedTenant) DeletePrompts(_ context.Context, _ uint) (int64, error) { return s.prompts, nil }

func TestPurge_ReportsResultsMap(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &purgeUserStore{u: &user.User{ID: 7, PublicID: "user_gone"}}
	purger := purge.NewPurger(store, fixedCounts{n: 3}, fixedCounts{n: 2}, noCascade{},
		fixedTenant{workspaces: 1, tasks: 5, media: 4, memberships: 1, prompts: 2}, zerolog.Nop())
	h := handlers.NewUserHandler(user.NewService(stubUsers{}), purger, workflow.NewRegistry(), zerolog.Nop())

	router := gin.New()
	router.DELETE("/v1/admin/users/:id/purge", h.Purge)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/users/user_gone/purge", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OperationID string           `json:"operationId"`
		State       string           `json:"state"`
		Results     map[string]int64 `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.OperationID)
	assert.Equal(t, string(workflow.StateSucceeded), body.State)
	assert.Equal(t, map[string]int64{
		"chats":       3,
		"workspaces":  1,
		"tasks":       5,
		"media":       4,
		"entities":    0,
		"memories":    0,
		"memberships": 1,
		"prompts":     2,
		"feedback":    2,
	}, body.Results)
	assert.True(t, store.deleted)
}

func TestPurge_UnknownUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	purger := purge.NewPurger(&purgeUserStore{}, fixedCounts{}, fixedCounts{}, noCascade{},
		fixedTenant{}, zerolog.Nop())
	h := handlers.NewUserHandler(user.NewService(stubUsers{}), purger, workflow.NewRegistry(), zerolog.Nop())

	router := gin.New()
	router.DELETE("/v1/admin/users/:id/purge", h.Purge)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/users/user_ghost/purge", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
