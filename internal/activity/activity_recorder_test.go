package activity_test

import (
	"context"
	"testing"

	"go-workdesk/internal/activity"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecorder(t *testing.T) *activity.Recorder {
	t.Helper()
	reg, err := store.NewRegistry(store.Version{
		Number: 1,
		Tables: []store.TableSpec{{Name: activity.TableName, Indexes: []string{"userId", "entityType", "createdAt"}}},
	})
	require.NoError(t, err)
	s, err := store.Open(context.Background(), ":memory:", reg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	entries, err := activity.NewTable(s)
	require.NoError(t, err)
	return activity.NewRecorder(entries, zap.NewNop())
}

func TestRecordAppendsEntries(t *testing.T) {
	ctx := context.Background()
	r := newRecorder(t)
	actor := user.Actor{ID: "u3", Name: "Meera", Role: user.RoleManager}

	r.Record(ctx, actor, "leave", "l1", "casual", "approved", "")
	r.Record(ctx, actor, "task", "t1", "report", "created", "")

	recent, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	for _, e := range recent {
		assert.Equal(t, actor.ID, e.UserID)
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	ctx := context.Background()
	r := newRecorder(t)
	actor := user.Actor{ID: "u1", Name: "Asha", Role: user.RoleAdmin}

	for i := 0; i < 5; i++ {
		r.Record(ctx, actor, "task", "t1", "report", "updated", "")
	}
	recent, err := r.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *activity.Recorder
	r.Record(context.Background(), user.Actor{}, "task", "t1", "", "created", "")
}
