package task_test

import (
	"context"
	"testing"
	"time"

	"go-workdesk/internal/app"
	"go-workdesk/internal/config"
	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/task"
	taskerrors "go-workdesk/internal/task/errors"
	"go-workdesk/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	manager   = user.Actor{ID: "u3", Name: "Meera", Role: user.RoleManager}
	developer = user.Actor{ID: "u2", Name: "Rohit", Role: user.RoleDeveloper}
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Config{DBPath: ":memory:", LateCutoff: "09:15", BackendRPS: 20, HTTPTimeout: time.Second}
	a, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx := context.Background()
	for _, req := range []user.CreateUserRequest{
		{ID: "u2", Name: "Rohit", Email: "rohit@x.dev", Role: user.RoleDeveloper},
		{ID: "u3", Name: "Meera", Email: "meera@x.dev", Role: user.RoleManager},
	} {
		_, err := a.Users.Create(ctx, req)
		require.NoError(t, err)
	}
	return a
}

func createTask(t *testing.T, a *app.App, assignedTo string) task.Task {
	t.Helper()
	created, err := a.Tasks.Create(context.Background(), manager, task.CreateTaskRequest{
		Title:      "Prepare quarterly report",
		Priority:   task.PriorityHigh,
		ProjectID:  "p1",
		AssignedTo: assignedTo,
		DueDate:    "2025-12-20",
	})
	require.NoError(t, err)
	return created
}

func strptr(s string) *string { return &s }

func TestCreateAssignedTaskNotifiesAssignee(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	created := createTask(t, a, developer.ID)
	assert.Equal(t, task.StatusPending, created.Status)
	assert.Equal(t, manager.ID, created.CreatedBy)

	notes, err := a.Notifications.ListForUser(ctx, developer.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Task assigned to you", notes[0].Title)
}

func TestCreateUnassignedTaskNotifiesNobody(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	createTask(t, a, "")
	all, err := a.Notifications.ListForUser(ctx, developer.ID, false)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStatusMachine(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, "")

	// pending cannot jump straight to completed.
	_, err := a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{
		Status: strptr(task.StatusCompleted),
	})
	assert.ErrorIs(t, err, taskerrors.ErrInvalidStatusTransition)

	got, err := a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{
		Status: strptr(task.StatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)

	got, err = a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{
		Status: strptr(task.StatusCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)

	// completed is terminal.
	_, err = a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{
		Status: strptr(task.StatusInProgress),
	})
	assert.ErrorIs(t, err, taskerrors.ErrInvalidStatusTransition)
}

func TestReassignmentNotifiesNewAssignee(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, "")

	_, err := a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{
		AssignedTo: strptr(developer.ID),
	})
	require.NoError(t, err)

	notes, err := a.Notifications.ListForUser(ctx, developer.ID, true)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestEffectiveStatusDerivesOverdue(t *testing.T) {
	tk := task.Task{Status: task.StatusPending, DueDate: "2025-12-20"}

	assert.Equal(t, task.StatusPending, tk.EffectiveStatus(time.Date(2025, 12, 20, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, task.StatusOverdue, tk.EffectiveStatus(time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC)))

	tk.Status = task.StatusCompleted
	assert.Equal(t, task.StatusCompleted, tk.EffectiveStatus(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestSoftDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, "")

	deleted, err := a.Tasks.SoftDelete(ctx, manager, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	// The tombstoned row is still readable by id but hidden from listings
	// and closed to mutation.
	got, err := a.Tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDeleted)

	byProject, err := a.Tasks.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, byProject)

	_, err = a.Tasks.Update(ctx, manager, created.ID, task.UpdateTaskRequest{Title: strptr("new title")})
	assert.ErrorIs(t, err, taskerrors.ErrTaskDeleted)
	_, err = a.Tasks.SoftDelete(ctx, manager, created.ID)
	assert.ErrorIs(t, err, taskerrors.ErrTaskDeleted)

	restored, err := a.Tasks.Restore(ctx, manager, created.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, created.Title, restored.Title)

	byProject, err = a.Tasks.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, byProject, 1)
}

func TestRestoreRequiresTombstone(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, "")

	_, err := a.Tasks.Restore(ctx, manager, created.ID)
	assert.ErrorIs(t, err, taskerrors.ErrTaskNotDeleted)
}

func TestPermanentDeleteRequiresGrantAndTombstone(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, "")

	// Purge needs the task purge grant.
	err := a.Tasks.PermanentDelete(ctx, developer, created.ID)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// And a preceding soft delete.
	err = a.Tasks.PermanentDelete(ctx, manager, created.ID)
	assert.ErrorIs(t, err, taskerrors.ErrTaskNotDeleted)

	_, err = a.Tasks.SoftDelete(ctx, manager, created.ID)
	require.NoError(t, err)
	require.NoError(t, a.Tasks.PermanentDelete(ctx, manager, created.ID))

	got, err := a.Tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = a.Tasks.PermanentDelete(ctx, manager, created.ID)
	assert.ErrorIs(t, err, taskerrors.ErrTaskNotFound)
}

func TestAddFollowUpSnapshotsAuthor(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	created := createTask(t, a, developer.ID)

	got, err := a.Tasks.AddFollowUp(ctx, developer, created.ID, "halfway there")
	require.NoError(t, err)
	require.Len(t, got.FollowUps, 1)
	assert.Equal(t, "halfway there", got.FollowUps[0].Content)
	assert.Equal(t, developer.ID, got.FollowUps[0].Author.ID)
	assert.Equal(t, developer.Role, got.FollowUps[0].Author.Role)

	_, err = a.Tasks.AddFollowUp(ctx, developer, created.ID, "")
	assert.ErrorIs(t, err, taskerrors.ErrContentRequired)
}
