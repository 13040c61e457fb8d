package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/handlers"
)

// fakeEntityRepo serves a fixed page of summaries.
type fakeEntityRepo struct {
	summaries []*entity.Summary
}

func (f *fakeEntityRepo) Create(_ context.Context, _ *entity.Entity) error { return nil }
func (f *fakeEntityRepo) Update(_ context.Context, _ *entity.Entity) error { return nil }
func (f *fakeEntityRepo) FindByFilter(_ context.Context, _ entity.Filter, _ *query.Pagination) ([]*entity.Entity, error) {
	return nil, nil
}
func (f *fakeEntityRepo) FindByPublicID(_ context.Context, _ string) (*entity.Entity, error) {
	return nil, nil
}
func (f *fakeEntityRepo) FindSystemDefault(_ context.Context) (*entity.Entity, error) {
	return nil, nil
}
func (f *fakeEntityRepo) FindOrphaned(_ context.Context) ([]*entity.Entity, error) { return nil, nil }
func (f *fakeEntityRepo) ListSummaries(_ context.Context) ([]*entity.Summary, error) {
	return f.summaries, nil
}
func (f *fakeEntityRepo) Delete(_ context.Context, _ uint) error                 { return nil }
func (f *fakeEntityRepo) DeleteByIDs(_ context.Context, _ []uint) (int64, error) { return 0, nil }

type noMemories struct{}

func (noMemories) DeleteForEntities(_ context.Context, _ []uint) (int64, error) { return 0, nil }

func entitySummaries() []*entity.Summary {
	desc := "takes meeting notes"
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []*entity.Summary{
		{Entity: entity.Entity{ID: 1, PublicID: "ent_beta", Name: "Beta", Model: "gpt-4o-mini",
			AssocUserIDs: []string{"user_1"}, CreatedAt: base.Add(24 * time.Hour)}, MemoryCount: 4},
		{Entity: entity.Entity{ID: 2, PublicID: "ent_alpha", Name: "alpha", Description: &desc,
			Model: "gpt-4o", CreatedAt: base.Add(48 * time.Hour)}, MemoryCount: 9},
		{Entity: entity.Entity{ID: 3, PublicID: "ent_system", Name: "Continuum", IsSystem: true,
			Model: "gpt-4o-mini", CreatedAt: base}, MemoryCount: 1},
	}
}

func newEntityListRouter(t *testing.T, summaries []*entity.Summary) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := entity.NewService(&fakeEntityRepo{summaries: summaries}, noMemories{}, zerolog.Nop(),
		"Continuum", "gpt-4o-mini")
	h := handlers.NewEntityHandler(svc, nil, workflow.NewRegistry(), zerolog.Nop())
	router := gin.New()
	router.GET("/v1/admin/entities", h.ListSummaries)
	return router
}

func listEntityIDs(t *testing.T, router *gin.Engine, rawQuery string) []string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/entities"+rawQuery, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestListSummaries_SearchAndFacet(t *testing.T) {
	router := newEntityListRouter(t, entitySummaries())

	t.Run("no params keeps the page order", func(t *testing.T) {
		assert.Equal(t, []string{"ent_beta", "ent_alpha", "ent_system"}, listEntityIDs(t, router, ""))
	})

	t.Run("no-match search yields zero records", func(t *testing.T) {
		assert.Empty(t, listEntityIDs(t, router, "?search=zzz-no-match"))
	})

	t.Run("search is case-insensitive over name", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha"}, listEntityIDs(t, router, "?search=ALPHA"))
	})

	t.Run("search reaches descriptions", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha"}, listEntityIDs(t, router, "?search=meeting"))
	})

	t.Run("orphaned facet keeps only purge-eligible entities", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha"}, listEntityIDs(t, router, "?orphaned=true"))
	})
}

func TestListSummaries_Sorting(t *testing.T) {
	router := newEntityListRouter(t, entitySummaries())

	t.Run("name defaults to ascending", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha", "ent_beta", "ent_system"},
			listEntityIDs(t, router, "?sortKey=name"))
	})

	t.Run("explicit dir flips the order", func(t *testing.T) {
		assert.Equal(t, []string{"ent_system", "ent_beta", "ent_alpha"},
			listEntityIDs(t, router, "?sortKey=name&dir=desc"))
	})

	t.Run("created defaults to newest first", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha", "ent_beta", "ent_system"},
			listEntityIDs(t, router, "?sortKey=created"))
	})

	t.Run("memories defaults to largest first", func(t *testing.T) {
		assert.Equal(t, []string{"ent_alpha", "ent_beta", "ent_system"},
			listEntityIDs(t, router, "?sortKey=memories"))
	})

	t.Run("unknown key keeps the page order", func(t *testing.T) {
		assert.Equal(t, []string{"ent_beta", "ent_alpha", "ent_system"},
			listEntityIDs(t, router, "?sortKey=bogus"))
	})

	t.Run("sorting composes with filtering", func(t *testing.T) {
		assert.Equal(t, []string{"ent_beta", "ent_system"},
			listEntityIDs(t, router, "?search=mini&sortKey=memories"))
	})
}
