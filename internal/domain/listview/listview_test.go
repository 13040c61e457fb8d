package listview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/continuumhq/continuum-server/internal/domain/listview"
)

type row struct {
	Name    string
	Email   string
	Blocked bool
	Created time.Time
}

func testView() *listview.View[row] {
	return listview.New(
		func(r row) []string { return []string{r.Name, r.Email} },
		map[string]listview.SortKey[row]{
			"name": {
				Compare: func(a, b row) int { return listview.CompareStrings(a.Name, b.Name) },
				Default: listview.Ascending,
			},
			"created": {
				Compare: func(a, b row) int { return a.Created.Compare(b.Created) },
				Default: listview.Descending,
			},
		},
	)
}

func sampleRows() []row {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []row{
		{Name: "Carol", Email: "carol@example.com", Created: base.Add(2 * time.Hour)},
		{Name: "alice", Email: "alice@example.com", Created: base},
		{Name: "Bob", Email: "bob@test.org", Blocked: true, Created: base.Add(time.Hour)},
	}
}

func TestFilter(t *testing.T) {
	v := testView()
	rows := sampleRows()

	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Len(t, v.Filter(rows, ""), 3)
	})

	t.Run("case-insensitive substring", func(t *testing.T) {
		got := v.Filter(rows, "ALICE")
		require.Len(t, got, 1)
		assert.Equal(t, "alice", got[0].Name)
	})

	t.Run("matches any searchable field", func(t *testing.T) {
		got := v.Filter(rows, "test.org")
		require.Len(t, got, 1)
		assert.Equal(t, "Bob", got[0].Name)
	})

	t.Run("facets intersect with query", func(t *testing.T) {
		got := v.Filter(rows, "", func(r row) bool { return r.Blocked })
		require.Len(t, got, 1)
		assert.Equal(t, "Bob", got[0].Name)
	})

	t.Run("no match yields empty, count zero", func(t *testing.T) {
		got := v.Filter(rows, "nobody-here")
		assert.NotNil(t, got)
		assert.Len(t, got, 0)
	})
}

func TestSort(t *testing.T) {
	v := testView()
	rows := sampleRows()

	t.Run("name ascending ignores case", func(t *testing.T) {
		got := v.Sort(rows, "name", listview.Ascending)
		names := []string{got[0].Name, got[1].Name, got[2].Name}
		assert.Equal(t, []string{"alice", "Bob", "Carol"}, names)
	})

	t.Run("flipping direction reverses order", func(t *testing.T) {
		asc := v.Sort(rows, "created", listview.Ascending)
		desc := v.Sort(rows, "created", listview.Descending)
		require.Len(t, asc, 3)
		assert.Equal(t, asc[0].Name, desc[2].Name)
		assert.Equal(t, asc[2].Name, desc[0].Name)
	})

	t.Run("unknown key leaves slice untouched", func(t *testing.T) {
		got := v.Sort(rows, "bogus", listview.Ascending)
		assert.Equal(t, rows, got)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		before := make([]row, len(rows))
		copy(before, rows)
		v.Sort(rows, "name", listview.Descending)
		assert.Equal(t, before, rows)
	})
}

// Toggling the sort key must flip direction on the active key, reset to the
// key default on a new key, and never change which records are visible.
func TestToggle(t *testing.T) {
	v := testView()

	key, dir := v.Toggle("name", listview.Ascending, "name")
	assert.Equal(t, "name", key)
	assert.Equal(t, listview.Descending, dir)

	key, dir = v.Toggle("name", listview.Descending, "created")
	assert.Equal(t, "created", key)
	assert.Equal(t, listview.Descending, dir, "created column starts descending")

	key, dir = v.Toggle("name", listview.Ascending, "bogus")
	assert.Equal(t, "name", key)
	assert.Equal(t, listview.Ascending, dir)
}

func TestToggle_PreservesFilteredMembership(t *testing.T) {
	v := testView()
	rows := sampleRows()

	filtered := v.Filter(rows, "example.com")
	key, dir := v.Toggle("name", listview.Ascending, "name")
	sorted := v.Sort(filtered, key, dir)

	require.Len(t, sorted, len(filtered))
	members := map[string]bool{}
	for _, r := range filtered {
		members[r.Name] = true
	}
	for _, r := range sorted {
		assert.True(t, members[r.Name], "sort introduced record %q", r.Name)
	}
}

func TestPage(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, listview.Page(rows, 1, 2))
	assert.Equal(t, []int{3, 4}, listview.Page(rows, 2, 2))
	assert.Equal(t, []int{5}, listview.Page(rows, 3, 2))
	assert.Empty(t, listview.Page(rows, 4, 2))
	assert.Equal(t, []int{1, 2}, listview.Page(rows, 0, 2), "page below 1 clamps to first")
	assert.Nil(t, listview.Page(rows, 1, 0))
}
