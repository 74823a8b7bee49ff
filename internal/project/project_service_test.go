package project_test

import (
	"context"
	"testing"
	"time"

	"go-workdesk/internal/app"
	"go-workdesk/internal/config"
	"go-workdesk/internal/project"
	"go-workdesk/internal/shared/apperror"
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
	return a
}

func createProject(t *testing.T, a *app.App) project.Project {
	t.Helper()
	p, err := a.Projects.CreateProject(context.Background(), manager, project.CreateProjectRequest{
		Name:        "Website revamp",
		Description: "public site refresh",
	})
	require.NoError(t, err)
	return p
}

func TestCreateProjectRequiresManageGrant(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Projects.CreateProject(context.Background(), developer, project.CreateProjectRequest{Name: "x"})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestCreateProjectStartsActive(t *testing.T) {
	a := newTestApp(t)
	p := createProject(t, a)

	assert.Equal(t, project.StatusActive, p.Status)
	assert.Equal(t, manager.ID, p.CreatedBy)
}

func TestUpdateProjectStatus(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	p := createProject(t, a)

	got, err := a.Projects.UpdateProjectStatus(ctx, manager, p.ID, project.StatusOnHold)
	require.NoError(t, err)
	assert.Equal(t, project.StatusOnHold, got.Status)

	_, err = a.Projects.UpdateProjectStatus(ctx, manager, p.ID, "paused")
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
}

func TestCreateTeamLinksBackToProject(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	p := createProject(t, a)

	team, err := a.Projects.CreateTeam(ctx, manager, project.CreateTeamRequest{
		Name:      "Frontend",
		ProjectID: p.ID,
		LeadID:    "u3",
		MemberIDs: []string{"u2"},
	})
	require.NoError(t, err)

	gotProject, err := a.Projects.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, gotProject.TeamIDs, team.ID)

	teams, err := a.Projects.ListTeams(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)
}

func TestCreateTeamRequiresExistingProject(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Projects.CreateTeam(context.Background(), manager, project.CreateTeamRequest{
		Name:      "Frontend",
		ProjectID: "ghost",
		LeadID:    "u3",
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestTeamMembership(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	p := createProject(t, a)

	team, err := a.Projects.CreateTeam(ctx, manager, project.CreateTeamRequest{
		Name:      "Backend",
		ProjectID: p.ID,
		LeadID:    "u3",
	})
	require.NoError(t, err)

	team, err = a.Projects.AddMember(ctx, manager, team.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, team.MemberIDs)

	// Adding the lead, or an existing member, changes nothing.
	team, err = a.Projects.AddMember(ctx, manager, team.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, team.MemberIDs)
	team, err = a.Projects.AddMember(ctx, manager, team.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, team.MemberIDs)

	assert.ElementsMatch(t, []string{"u2", "u3"}, team.AllMembers())

	team, err = a.Projects.RemoveMember(ctx, manager, team.ID, "u2")
	require.NoError(t, err)
	assert.Empty(t, team.MemberIDs)
}
