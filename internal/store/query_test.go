package store_test

import (
	"context"
	"testing"

	"go-workdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocs(t *testing.T, tbl *store.Table[doc]) {
	t.Helper()
	require.NoError(t, tbl.BulkPut(context.Background(), []doc{
		{ID: "d1", Name: "ant", Score: 10, Tag: "red"},
		{ID: "d2", Name: "bee", Score: 20, Tag: "red"},
		{ID: "d3", Name: "cat", Score: 30, Tag: "blue"},
		{ID: "d4", Name: "dog", Score: 40, Tag: "blue"},
		{ID: "d5", Name: "eel", Score: 50, Tag: "red"},
	}))
}

func TestQueryEqualityOnIndexedField(t *testing.T) {
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	seedDocs(t, tbl)

	out, err := tbl.Query(context.Background(), store.Query[doc]{
		Where: []store.Where{store.Eq("name", "cat")},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "d3", out[0].ID)
}

func TestQueryRangeWithOrderAndLimit(t *testing.T) {
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	seedDocs(t, tbl)

	out, err := tbl.Query(context.Background(), store.Query[doc]{
		Where:   []store.Where{store.Gte("score", 20), store.Lte("score", 50)},
		OrderBy: "score",
		Desc:    true,
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "d5", out[0].ID)
	assert.Equal(t, "d4", out[1].ID)
}

func TestQueryUnindexedFieldFallsBackToScan(t *testing.T) {
	// "tag" is not indexed in v1, so the condition is evaluated client-side.
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	seedDocs(t, tbl)

	out, err := tbl.Query(context.Background(), store.Query[doc]{
		Where:   []store.Where{store.Eq("tag", "red")},
		OrderBy: "score",
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"d1", "d2", "d5"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestQueryMatchPredicateWithLimit(t *testing.T) {
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	seedDocs(t, tbl)

	out, err := tbl.Query(context.Background(), store.Query[doc]{
		Match:   func(d doc) bool { return d.Score > 15 },
		OrderBy: "score",
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "d2", out[0].ID)
	assert.Equal(t, "d3", out[1].ID)
}

func TestQueryEmptyResultIsNotAnError(t *testing.T) {
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	seedDocs(t, tbl)

	out, err := tbl.Query(context.Background(), store.Query[doc]{
		Where: []store.Where{store.Eq("name", "yak")},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMatchDocumentOperators(t *testing.T) {
	docu := map[string]any{"n": float64(5), "s": "mid", "b": true}

	assert.True(t, store.MatchDocument(docu, []store.Where{store.Eq("n", 5)}))
	assert.True(t, store.MatchDocument(docu, []store.Where{store.Gte("n", 5), store.Lte("n", 9)}))
	assert.False(t, store.MatchDocument(docu, []store.Where{store.Gte("n", 6)}))
	assert.True(t, store.MatchDocument(docu, []store.Where{store.Gte("s", "aaa"), store.Lte("s", "zzz")}))
	assert.True(t, store.MatchDocument(docu, []store.Where{store.Eq("b", true)}))
	assert.False(t, store.MatchDocument(docu, []store.Where{store.Eq("missing", 1)}))
	// Mismatched kinds never match.
	assert.False(t, store.MatchDocument(docu, []store.Where{store.Eq("s", 5)}))
}

func TestCompareValuesMixedNumericKinds(t *testing.T) {
	cmp, ok := store.CompareValues(float64(3), 3)
	require.True(t, ok)
	assert.Zero(t, cmp)

	cmp, ok = store.CompareValues(int64(2), float64(7))
	require.True(t, ok)
	assert.Negative(t, cmp)

	_, ok = store.CompareValues("a", 1)
	assert.False(t, ok)
}
