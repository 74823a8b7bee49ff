package support_test

import (
	"context"
	"testing"
	"time"

	"go-workdesk/internal/app"
	"go-workdesk/internal/config"
	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/support"
	"go-workdesk/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin    = user.Actor{ID: "u1", Name: "Asha", Role: user.RoleAdmin}
	employee = user.Actor{ID: "u2", Name: "Rohit", Role: user.RoleDeveloper}
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	cfg := config.Config{DBPath: ":memory:", LateCutoff: "09:15", BackendRPS: 20, HTTPTimeout: time.Second}
	a, err := app.Build(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ctx := context.Background()
	for _, req := range []user.CreateUserRequest{
		{ID: "u1", Name: "Asha", Email: "asha@x.dev", Role: user.RoleAdmin},
		{ID: "u2", Name: "Rohit", Email: "rohit@x.dev", Role: user.RoleDeveloper},
	} {
		_, err := a.Users.Create(ctx, req)
		require.NoError(t, err)
	}
	return a
}

func fileTicket(t *testing.T, a *app.App) support.Ticket {
	t.Helper()
	tk, err := a.Support.File(context.Background(), employee, support.FileTicketRequest{
		Subject:     "VPN keeps dropping",
		Description: "disconnects every few minutes",
		Category:    "it",
	})
	require.NoError(t, err)
	return tk
}

func TestFileTicketNotifiesAdmins(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	tk := fileTicket(t, a)
	assert.Equal(t, support.StatusOpen, tk.Status)
	assert.Equal(t, employee.ID, tk.UserID)

	notes, err := a.Notifications.ListForUser(ctx, admin.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "New support ticket", notes[0].Title)
}

func TestTicketStatusTransitions(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	tk := fileTicket(t, a)

	// open cannot jump straight to resolved.
	_, err := a.Support.UpdateStatus(ctx, admin, tk.ID, support.StatusResolved)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)

	got, err := a.Support.UpdateStatus(ctx, employee, tk.ID, support.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, support.StatusInProgress, got.Status)

	got, err = a.Support.UpdateStatus(ctx, admin, tk.ID, support.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, support.StatusResolved, got.Status)

	got, err = a.Support.UpdateStatus(ctx, admin, tk.ID, support.StatusClosed)
	require.NoError(t, err)
	assert.Equal(t, support.StatusClosed, got.Status)

	// closed is terminal.
	_, err = a.Support.UpdateStatus(ctx, admin, tk.ID, support.StatusOpen)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
}

func TestResolveRequiresAdminGrant(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	tk := fileTicket(t, a)

	_, err := a.Support.UpdateStatus(ctx, employee, tk.ID, support.StatusInProgress)
	require.NoError(t, err)

	_, err = a.Support.UpdateStatus(ctx, employee, tk.ID, support.StatusResolved)
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestListByUser(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	fileTicket(t, a)
	fileTicket(t, a)

	mine, err := a.Support.ListByUser(ctx, employee.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := a.Support.ListByUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, others)
}
