package memory_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/memory"
)

// fakeRepository keeps memories in a map keyed by entity ID.
type fakeRepository struct {
	byEntity  map[uint][]*memory.Memory
	deleteErr map[string]error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		byEntity:  make(map[uint][]*memory.Memory),
		deleteErr: make(map[string]error),
	}
}

func (f *fakeRepository) ListByEntity(_ context.Context, entityID uint) ([]*memory.Memory, error) {
	return f.byEntity[entityID], nil
}

func (f *fakeRepository) Create(_ context.Context, m *memory.Memory) error {
	f.byEntity[m.EntityID] = append(f.byEntity[m.EntityID], m)
	return nil
}

func (f *fakeRepository) Update(_ context.Context, m *memory.Memory) error {
	for i, existing := range f.byEntity[m.EntityID] {
		if existing.PublicID == m.PublicID {
			f.byEntity[m.EntityID][i] = m
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepository) FindByPublicID(_ context.Context, entityID uint, publicID string) (*memory.Memory, error) {
	for _, m := range f.byEntity[entityID] {
		if m.PublicID == publicID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) Delete(_ context.Context, entityID uint, publicID string) error {
	if err, ok := f.deleteErr[publicID]; ok {
		return err
	}
	rows := f.byEntity[entityID]
	for i, m := range rows {
		if m.PublicID == publicID {
			f.byEntity[entityID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRepository) ReplaceForEntity(_ context.Context, entityID uint, memories []*memory.Memory) error {
	f.byEntity[entityID] = memories
	return nil
}

func (f *fakeRepository) DeleteForEntities(_ context.Context, entityIDs []uint) (int64, error) {
	var n int64
	for _, id := range entityIDs {
		n += int64(len(f.byEntity[id]))
		delete(f.byEntity, id)
	}
	return n, nil
}

func (f *fakeRepository) CountByEntity(_ context.Context, entityID uint) (int64, error) {
	return int64(len(f.byEntity[entityID])), nil
}

func TestSanitizeImport_StripsTenantFields(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":"FACT","content":"likes tea","importance":5,"entityId":"ent_evil","userId":"user_evil","assocEntityIds":["ent_x"]},
		{"type":"CORE","content":"name is Ada","importance":10,"tags":["identity"]}
	]`)

	inputs, err := memory.SanitizeImport(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, memory.TypeFact, inputs[0].Type)
	assert.Equal(t, "likes tea", inputs[0].Content)
	assert.Equal(t, memory.TypeCore, inputs[1].Type)
	assert.Equal(t, []string{"identity"}, inputs[1].Tags)
}

func TestSanitizeImport_RejectsNonArray(t *testing.T) {
	for _, raw := range []string{`{"type":"FACT"}`, `"hello"`, `42`, `not json`} {
		_, err := memory.SanitizeImport(context.Background(), json.RawMessage(raw))
		assert.Error(t, err, "payload %s should be rejected", raw)
	}
}

func TestImport_AssignsFreshIDs(t *testing.T) {
	repo := newFakeRepository()
	svc := memory.NewService(repo)
	ctx := context.Background()

	// Seed an existing collection that the import must replace.
	_, err := svc.Create(ctx, 1, memory.Input{Type: memory.TypeEpisode, Content: "old", Importance: 3})
	require.NoError(t, err)

	raw := json.RawMessage(`[
		{"id":"mem_callersupplied","type":"FACT","content":"imported","importance":4}
	]`)
	inputs, err := memory.SanitizeImport(ctx, raw)
	require.NoError(t, err)

	count, err := svc.Import(ctx, 1, inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := repo.byEntity[1]
	require.Len(t, stored, 1, "import replaces the whole collection")
	assert.Equal(t, "imported", stored[0].Content)
	assert.True(t, strings.HasPrefix(stored[0].PublicID, "mem_"))
	assert.NotEqual(t, "mem_callersupplied", stored[0].PublicID, "caller-supplied IDs are never persisted")
}

func TestExportImportRoundTrip(t *testing.T) {
	repo := newFakeRepository()
	svc := memory.NewService(repo)
	ctx := context.Background()

	occurred := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)
	_, err := svc.Create(ctx, 1, memory.Input{
		Type:       memory.TypeAnchor,
		Content:    "anchor note",
		Importance: 8,
		Tags:       []string{"a", "b"},
		Embedding:  []float64{0.1, 0.2},
		OccurredAt: &occurred,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, memory.Input{Type: memory.TypeReflection, Content: "reflection", Importance: 2})
	require.NoError(t, err)

	exported, err := svc.Export(ctx, 1)
	require.NoError(t, err)
	require.Len(t, exported, 2)

	// Re-import through the same path the HTTP handler uses.
	raw, err := json.Marshal(exported)
	require.NoError(t, err)
	inputs, err := memory.SanitizeImport(ctx, raw)
	require.NoError(t, err)
	count, err := svc.Import(ctx, 2, inputs)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	reexported, err := svc.Export(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, exported, reexported, "round trip preserves everything but identity")
}

func TestCreate_Validation(t *testing.T) {
	svc := memory.NewService(newFakeRepository())
	ctx := context.Background()

	tests := []struct {
		name  string
		input memory.Input
	}{
		{"unknown type", memory.Input{Type: "NOPE", Content: "x", Importance: 5}},
		{"empty content", memory.Input{Type: memory.TypeFact, Content: "", Importance: 5}},
		{"importance too low", memory.Input{Type: memory.TypeFact, Content: "x", Importance: 0}},
		{"importance too high", memory.Input{Type: memory.TypeFact, Content: "x", Importance: 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, tt.input)
			assert.Error(t, err)
		})
	}
}

func TestBulkDelete_AllSettled(t *testing.T) {
	repo := newFakeRepository()
	svc := memory.NewService(repo)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		m, err := svc.Create(ctx, 1, memory.Input{Type: memory.TypeFact, Content: "note", Importance: 5})
		require.NoError(t, err)
		ids = append(ids, m.PublicID)
	}
	repo.deleteErr[ids[2]] = errors.New("storage hiccup")

	result, err := svc.BulkDelete(ctx, 1, ids)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Deleted)
	assert.Equal(t, []string{ids[2]}, result.Failed, "one failure does not short-circuit the rest")
}

func TestClear_ReportsCount(t *testing.T) {
	repo := newFakeRepository()
	svc := memory.NewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, 7, memory.Input{Type: memory.TypeEpisode, Content: "e", Importance: 1})
		require.NoError(t, err)
	}

	deleted, err := svc.Clear(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.Empty(t, repo.byEntity[7])
}
