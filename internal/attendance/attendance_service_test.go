package attendance_test

import (
	"context"
	"testing"
	"time"

	"go-workdesk/internal/app"
	"go-workdesk/internal/attendance"
	attendanceerrors "go-workdesk/internal/attendance/errors"
	"go-workdesk/internal/config"
	"go-workdesk/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	employee = user.Actor{ID: "u2", Name: "Rohit", Role: user.RoleDeveloper}
	manager  = user.Actor{ID: "u3", Name: "Meera", Role: user.RoleManager}
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

func at(hour, minute int) time.Time {
	return time.Date(2025, 12, 15, hour, minute, 0, 0, time.UTC)
}

func TestCheckInAtCutoffIsPresent(t *testing.T) {
	a := newTestApp(t)

	rec, err := a.Attendance.CheckIn(context.Background(), employee, at(9, 15))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, "09:15", rec.CheckIn)
	assert.Equal(t, "2025-12-15", rec.Date)
}

func TestCheckInPastCutoffIsLate(t *testing.T) {
	a := newTestApp(t)

	rec, err := a.Attendance.CheckIn(context.Background(), employee, at(9, 16))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestCheckInTwiceSameDayRejected(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Attendance.CheckIn(ctx, employee, at(9, 0))
	require.NoError(t, err)

	_, err = a.Attendance.CheckIn(ctx, employee, at(13, 0))
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedIn)
}

func TestCheckOutDerivesWorkHours(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Attendance.CheckIn(ctx, employee, at(9, 0))
	require.NoError(t, err)

	rec, err := a.Attendance.CheckOut(ctx, employee, at(18, 0))
	require.NoError(t, err)
	assert.Equal(t, "18:00", rec.CheckOut)
	assert.InDelta(t, 9.0, rec.WorkHours, 0.001)
}

func TestCheckOutRoundsToOneDecimal(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Attendance.CheckIn(ctx, employee, at(9, 0))
	require.NoError(t, err)

	// 8h20m = 8.333... rounds to 8.3.
	rec, err := a.Attendance.CheckOut(ctx, employee, at(17, 20))
	require.NoError(t, err)
	assert.InDelta(t, 8.3, rec.WorkHours, 0.001)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Attendance.CheckOut(context.Background(), employee, at(18, 0))
	assert.ErrorIs(t, err, attendanceerrors.ErrNotCheckedIn)
}

func TestCheckOutTwiceRejected(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	_, err := a.Attendance.CheckIn(ctx, employee, at(9, 0))
	require.NoError(t, err)
	_, err = a.Attendance.CheckOut(ctx, employee, at(17, 0))
	require.NoError(t, err)

	_, err = a.Attendance.CheckOut(ctx, employee, at(18, 0))
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyCheckedOut)
}

func lateRecord(t *testing.T, a *app.App, day int) attendance.AttendanceRecord {
	t.Helper()
	rec, err := a.Attendance.CheckIn(context.Background(), employee,
		time.Date(2025, 12, day, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, attendance.StatusLate, rec.Status)
	return rec
}

func TestRegularizationLifecycleApproved(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	rec := lateRecord(t, a, 15)

	rec, err := a.Attendance.RequestRegularization(ctx, employee, rec.ID, "train strike")
	require.NoError(t, err)
	require.NotNil(t, rec.Regularization)
	assert.Equal(t, attendance.RegularizationPending, rec.Regularization.Status)

	// Managerial users are told about the pending request.
	notes, err := a.Notifications.ListForUser(ctx, manager.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	rec, err = a.Attendance.ResolveRegularization(ctx, manager, rec.ID, true)
	require.NoError(t, err)
	assert.Equal(t, attendance.RegularizationApproved, rec.Regularization.Status)
	// Approval reclassifies the day as present.
	assert.Equal(t, attendance.StatusPresent, rec.Status)

	notes, err = a.Notifications.ListForUser(ctx, employee.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "approved")
}

func TestRegularizationRejectionKeepsStatus(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	rec := lateRecord(t, a, 15)

	rec, err := a.Attendance.RequestRegularization(ctx, employee, rec.ID, "train strike")
	require.NoError(t, err)

	rec, err = a.Attendance.ResolveRegularization(ctx, manager, rec.ID, false)
	require.NoError(t, err)
	assert.Equal(t, attendance.RegularizationRejected, rec.Regularization.Status)
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestRegularizationRules(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	rec, err := a.Attendance.CheckIn(ctx, employee, at(9, 0))
	require.NoError(t, err)

	// Present days have nothing to regularize.
	_, err = a.Attendance.RequestRegularization(ctx, employee, rec.ID, "why not")
	assert.ErrorIs(t, err, attendanceerrors.ErrNotRegularizable)

	late := lateRecord(t, a, 16)
	_, err = a.Attendance.RequestRegularization(ctx, employee, late.ID, "")
	assert.ErrorIs(t, err, attendanceerrors.ErrReasonRequired)

	_, err = a.Attendance.RequestRegularization(ctx, manager, late.ID, "not mine")
	assert.ErrorIs(t, err, attendanceerrors.ErrNotOwner)

	_, err = a.Attendance.RequestRegularization(ctx, employee, late.ID, "train strike")
	require.NoError(t, err)
	_, err = a.Attendance.RequestRegularization(ctx, employee, late.ID, "again")
	assert.ErrorIs(t, err, attendanceerrors.ErrRegularizationExists)

	// Only managerial roles resolve.
	_, err = a.Attendance.ResolveRegularization(ctx, employee, late.ID, true)
	require.Error(t, err)

	_, err = a.Attendance.ResolveRegularization(ctx, manager, late.ID, true)
	require.NoError(t, err)
	_, err = a.Attendance.ResolveRegularization(ctx, manager, late.ID, true)
	assert.ErrorIs(t, err, attendanceerrors.ErrRegularizationNotPending)
}
