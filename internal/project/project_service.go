package project

import (
	"context"
	"net/http"
	"time"

	"go-workdesk/internal/activity"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/shared/validate"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errProjectNotFound = apperror.New(apperror.CodeNotFound, "project not found", http.StatusNotFound)
var errTeamNotFound = apperror.New(apperror.CodeNotFound, "team not found", http.StatusNotFound)
var errUnknownStatus = apperror.New(apperror.CodeInvalidInput, "unknown project status", http.StatusBadRequest)

// NewTable binds the projects table.
func NewTable(s *store.Store) (*store.Table[Project], error) {
	return store.NewTable[Project](s, TableName, func(p Project) string { return p.ID })
}

// NewTeamTable binds the teams table.
func NewTeamTable(s *store.Store) (*store.Table[Team], error) {
	return store.NewTable[Team](s, TeamTableName, func(t Team) string { return t.ID })
}

//go:generate mockgen -source=project_service.go -destination=mock/project_service_mock.go -package=mock
type Service interface {
	CreateProject(ctx context.Context, actor user.Actor, req CreateProjectRequest) (Project, error)
	UpdateProjectStatus(ctx context.Context, actor user.Actor, id, status string) (Project, error)
	CreateTeam(ctx context.Context, actor user.Actor, req CreateTeamRequest) (Team, error)
	AddMember(ctx context.Context, actor user.Actor, teamID, userID string) (Team, error)
	RemoveMember(ctx context.Context, actor user.Actor, teamID, userID string) (Team, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	GetTeam(ctx context.Context, id string) (*Team, error)
	ListTeams(ctx context.Context, projectID string) ([]Team, error)
}

type service struct {
	projects *store.Table[Project]
	teams    *store.Table[Team]
	enforcer *rbac.Enforcer
	audit    *activity.Recorder
	logger   *zap.Logger
}

func NewService(
	projects *store.Table[Project],
	teams *store.Table[Team],
	enforcer *rbac.Enforcer,
	audit *activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("project.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("project.service")
	}
	return &service{projects: projects, teams: teams, enforcer: enforcer, audit: audit, logger: l}
}

func (s *service) CreateProject(ctx context.Context, actor user.Actor, req CreateProjectRequest) (Project, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceProject, rbac.ActionManage); err != nil {
		return Project{}, err
	}
	if err := validate.Struct(req); err != nil {
		return Project{}, err
	}

	now := time.Now().UTC()
	p := Project{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.projects.Insert(ctx, p); err != nil {
		s.logger.Error("create project persist failed", zap.Error(err))
		return Project{}, err
	}
	s.logger.Info("create project success", zap.String("project_id", p.ID))
	s.audit.Record(ctx, actor, "project", p.ID, p.Name, "created", "")
	return p, nil
}

func (s *service) UpdateProjectStatus(ctx context.Context, actor user.Actor, id, status string) (Project, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceProject, rbac.ActionManage); err != nil {
		return Project{}, err
	}
	if !validStatus(status) {
		return Project{}, errUnknownStatus
	}
	current, err := s.projects.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if current == nil {
		return Project{}, errProjectNotFound
	}

	updated, err := s.projects.Update(ctx, id, map[string]any{
		"status":    status,
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return Project{}, err
	}
	s.logger.Info("project status updated",
		zap.String("project_id", id),
		zap.String("status", status),
	)
	s.audit.Record(ctx, actor, "project", id, current.Name, "status-"+status, "")
	return *updated, nil
}

func (s *service) CreateTeam(ctx context.Context, actor user.Actor, req CreateTeamRequest) (Team, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceTeam, rbac.ActionManage); err != nil {
		return Team{}, err
	}
	if err := validate.Struct(req); err != nil {
		return Team{}, err
	}
	parent, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		return Team{}, err
	}
	if parent == nil {
		return Team{}, errProjectNotFound
	}

	now := time.Now().UTC()
	t := Team{
		ID:        req.ID,
		Name:      req.Name,
		ProjectID: req.ProjectID,
		LeadID:    req.LeadID,
		MemberIDs: req.MemberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.teams.Insert(ctx, t); err != nil {
		s.logger.Error("create team persist failed", zap.Error(err))
		return Team{}, err
	}

	// Keep the project's team id list in step. No cross-table transaction
	// exists, so a failure here leaves a team without a back-reference; the
	// team remains reachable by projectId query.
	teamIDs := append(parent.TeamIDs, t.ID)
	if _, err := s.projects.Update(ctx, parent.ID, map[string]any{"teamIds": teamIDs}); err != nil {
		s.logger.Warn("project team list update failed",
			zap.String("project_id", parent.ID),
			zap.String("team_id", t.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("create team success",
		zap.String("team_id", t.ID),
		zap.String("project_id", t.ProjectID),
	)
	s.audit.Record(ctx, actor, "team", t.ID, t.Name, "created", "")
	return t, nil
}

func (s *service) AddMember(ctx context.Context, actor user.Actor, teamID, userID string) (Team, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceTeam, rbac.ActionManage); err != nil {
		return Team{}, err
	}
	current, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return Team{}, err
	}
	if current == nil {
		return Team{}, errTeamNotFound
	}
	for _, id := range current.AllMembers() {
		if id == userID {
			return *current, nil
		}
	}

	updated, err := s.teams.Update(ctx, teamID, map[string]any{
		"memberIds": append(current.MemberIDs, userID),
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return Team{}, err
	}
	s.audit.Record(ctx, actor, "team", teamID, current.Name, "member-added", userID)
	return *updated, nil
}

func (s *service) RemoveMember(ctx context.Context, actor user.Actor, teamID, userID string) (Team, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceTeam, rbac.ActionManage); err != nil {
		return Team{}, err
	}
	current, err := s.teams.Get(ctx, teamID)
	if err != nil {
		return Team{}, err
	}
	if current == nil {
		return Team{}, errTeamNotFound
	}

	members := make([]string, 0, len(current.MemberIDs))
	for _, id := range current.MemberIDs {
		if id != userID {
			members = append(members, id)
		}
	}
	updated, err := s.teams.Update(ctx, teamID, map[string]any{
		"memberIds": members,
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return Team{}, err
	}
	s.audit.Record(ctx, actor, "team", teamID, current.Name, "member-removed", userID)
	return *updated, nil
}

func (s *service) GetProject(ctx context.Context, id string) (*Project, error) {
	return s.projects.Get(ctx, id)
}

func (s *service) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.teams.Get(ctx, id)
}

func (s *service) ListTeams(ctx context.Context, projectID string) ([]Team, error) {
	return s.teams.Query(ctx, store.Query[Team]{
		Where:   []store.Where{store.Eq("projectId", projectID)},
		OrderBy: "name",
	})
}
