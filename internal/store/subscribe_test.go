package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReturnsCurrentResult(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	require.NoError(t, tbl.Put(ctx, doc{ID: "d1", Name: "ant", Score: 1}))

	sub, initial, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) { return tbl.All(ctx) },
		func(any) {},
	)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Len(t, initial.([]doc), 1)
	assert.True(t, sub.Active())
}

func TestSubscriptionObservesWriteBeforeCallReturns(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)

	var results [][]doc
	sub, _, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) { return tbl.All(ctx) },
		func(result any) { results = append(results, result.([]doc)) },
	)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// Delivery is synchronous with the write: by the time Put returns, the
	// observer has seen the new row. No sleeping, no polling.
	require.NoError(t, tbl.Put(ctx, doc{ID: "d1", Name: "ant", Score: 1}))
	require.Len(t, results, 1)
	assert.Len(t, results[0], 1)

	require.NoError(t, tbl.Put(ctx, doc{ID: "d2", Name: "bee", Score: 2}))
	require.Len(t, results, 2)
	assert.Len(t, results[1], 2)
}

func TestSubscriptionObservesUpdatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)
	require.NoError(t, tbl.Put(ctx, doc{ID: "d1", Name: "ant", Score: 1}))

	var last []doc
	sub, _, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) { return tbl.All(ctx) },
		func(result any) { last = result.([]doc) },
	)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	_, err = tbl.Update(ctx, "d1", map[string]any{"score": 99})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, 99, last[0].Score)

	require.NoError(t, tbl.Delete(ctx, "d1"))
	assert.Empty(t, last)
}

func TestUnsubscribeStopsDeliverySynchronously(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)

	calls := 0
	sub, _, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) { return tbl.All(ctx) },
		func(any) { calls++ },
	)
	require.NoError(t, err)

	require.NoError(t, tbl.Put(ctx, doc{ID: "d1", Name: "ant", Score: 1}))
	require.Equal(t, 1, calls)

	sub.Unsubscribe()
	assert.False(t, sub.Active())

	require.NoError(t, tbl.Put(ctx, doc{ID: "d2", Name: "bee", Score: 2}))
	assert.Equal(t, 1, calls)

	// Unsubscribing again is a no-op.
	sub.Unsubscribe()
}

func TestFailingQueryDoesNotStopOtherSubscriptions(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, ":memory:", v1())
	defer s.Close()
	tbl := docsTable(t, s)

	fail := false
	badCalls := 0
	bad, _, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) {
			if fail {
				return nil, errors.New("query broke")
			}
			return tbl.All(ctx)
		},
		func(any) { badCalls++ },
	)
	require.NoError(t, err)
	defer bad.Unsubscribe()

	goodCalls := 0
	good, _, err := s.Subscribe(ctx,
		func(ctx context.Context) (any, error) { return tbl.All(ctx) },
		func(any) { goodCalls++ },
	)
	require.NoError(t, err)
	defer good.Unsubscribe()

	fail = true
	require.NoError(t, tbl.Put(ctx, doc{ID: "d1", Name: "ant", Score: 1}))
	assert.Zero(t, badCalls)
	assert.Equal(t, 1, goodCalls)
}
