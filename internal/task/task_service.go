package task

import (
	"context"
	"time"

	"go-workdesk/internal/activity"
	"go-workdesk/internal/notify"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/shared/validate"
	"go-workdesk/internal/store"
	taskerrors "go-workdesk/internal/task/errors"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTable binds the tasks table.
func NewTable(s *store.Store) (*store.Table[Task], error) {
	return store.NewTable[Task](s, TableName, func(t Task) string { return t.ID })
}

//go:generate mockgen -source=task_service.go -destination=mock/task_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor user.Actor, req CreateTaskRequest) (Task, error)
	Update(ctx context.Context, actor user.Actor, id string, req UpdateTaskRequest) (Task, error)
	AddFollowUp(ctx context.Context, actor user.Actor, id, content string) (Task, error)
	SoftDelete(ctx context.Context, actor user.Actor, id string) (Task, error)
	Restore(ctx context.Context, actor user.Actor, id string) (Task, error)
	PermanentDelete(ctx context.Context, actor user.Actor, id string) error
	Get(ctx context.Context, id string) (*Task, error)
	ListByProject(ctx context.Context, projectID string) ([]Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]Task, error)
}

type service struct {
	tasks    *store.Table[Task]
	fanout   *notify.Engine
	enforcer *rbac.Enforcer
	audit    *activity.Recorder
	logger   *zap.Logger
}

func NewService(
	tasks *store.Table[Task],
	fanout *notify.Engine,
	enforcer *rbac.Enforcer,
	audit *activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("task.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("task.service")
	}
	return &service{tasks: tasks, fanout: fanout, enforcer: enforcer, audit: audit, logger: l}
}

func (s *service) Create(ctx context.Context, actor user.Actor, req CreateTaskRequest) (Task, error) {
	s.logger.Debug("create task requested",
		zap.String("actor_id", actor.ID),
		zap.String("title", req.Title),
	)
	if err := validate.Struct(req); err != nil {
		s.logger.Warn("create task validation failed", zap.Error(err))
		return Task{}, err
	}

	t := Task{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		TeamID:      req.TeamID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   actor.ID,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		s.logger.Error("create task persist failed", zap.Error(err))
		return Task{}, err
	}
	s.logger.Info("create task success",
		zap.String("task_id", t.ID),
		zap.String("assigned_to", t.AssignedTo),
	)

	if t.AssignedTo != "" {
		s.notifyAssigned(ctx, actor, t)
	}
	s.audit.Record(ctx, actor, "task", t.ID, t.Title, "created", "")
	return t, nil
}

func (s *service) Update(ctx context.Context, actor user.Actor, id string, req UpdateTaskRequest) (Task, error) {
	if err := validate.Struct(req); err != nil {
		s.logger.Warn("update task validation failed", zap.Error(err))
		return Task{}, err
	}

	current, err := s.activeTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	partial := make(map[string]any)
	if req.Title != nil {
		partial["title"] = *req.Title
	}
	if req.Description != nil {
		partial["description"] = *req.Description
	}
	if req.Priority != nil {
		partial["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		partial["dueDate"] = *req.DueDate
	}
	if req.Status != nil && *req.Status != current.Status {
		if !isAllowedStatusTransition(current.Status, *req.Status) {
			s.logger.Warn("update task invalid transition",
				zap.String("task_id", id),
				zap.String("from_status", current.Status),
				zap.String("to_status", *req.Status),
			)
			return Task{}, taskerrors.ErrInvalidStatusTransition
		}
		partial["status"] = *req.Status
	}
	reassigned := req.AssignedTo != nil && *req.AssignedTo != current.AssignedTo
	if req.AssignedTo != nil {
		partial["assignedTo"] = *req.AssignedTo
	}
	if len(partial) == 0 {
		return *current, nil
	}

	updated, err := s.tasks.Update(ctx, id, partial)
	if err != nil {
		s.logger.Error("update task persist failed", zap.String("task_id", id), zap.Error(err))
		return Task{}, err
	}
	s.logger.Info("update task success", zap.String("task_id", id))

	if reassigned && updated.AssignedTo != "" {
		s.notifyAssigned(ctx, actor, *updated)
	}
	s.audit.Record(ctx, actor, "task", id, updated.Title, "updated", "")
	return *updated, nil
}

// pending moves forward to in-progress, in-progress to completed. Overdue
// is derived at read time and never a stored transition.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusPending:
		return targetStatus == StatusInProgress
	case StatusInProgress:
		return targetStatus == StatusCompleted
	default:
		return false
	}
}

func (s *service) AddFollowUp(ctx context.Context, actor user.Actor, id, content string) (Task, error) {
	if content == "" {
		return Task{}, taskerrors.ErrContentRequired
	}
	current, err := s.activeTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	followUps := append(current.FollowUps, FollowUp{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    Author{ID: actor.ID, Name: actor.Name, Role: actor.Role},
		CreatedAt: time.Now().UTC(),
	})
	updated, err := s.tasks.Update(ctx, id, map[string]any{"followUps": followUps})
	if err != nil {
		return Task{}, err
	}
	s.logger.Info("follow-up added",
		zap.String("task_id", id),
		zap.Int("follow_ups", len(followUps)),
	)
	s.audit.Record(ctx, actor, "task", id, updated.Title, "follow-up", "")
	return *updated, nil
}

func (s *service) SoftDelete(ctx context.Context, actor user.Actor, id string) (Task, error) {
	current, err := s.activeTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	updated, err := s.tasks.Update(ctx, id, map[string]any{"isDeleted": true})
	if err != nil {
		return Task{}, err
	}
	s.logger.Info("soft-delete task success", zap.String("task_id", id))
	s.audit.Record(ctx, actor, "task", id, current.Title, "soft-deleted", "")
	return *updated, nil
}

func (s *service) Restore(ctx context.Context, actor user.Actor, id string) (Task, error) {
	current, err := s.tasks.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if current == nil {
		return Task{}, taskerrors.ErrTaskNotFound
	}
	if !current.IsDeleted {
		return Task{}, taskerrors.ErrTaskNotDeleted
	}
	updated, err := s.tasks.Update(ctx, id, map[string]any{"isDeleted": false})
	if err != nil {
		return Task{}, err
	}
	s.logger.Info("restore task success", zap.String("task_id", id))
	s.audit.Record(ctx, actor, "task", id, current.Title, "restored", "")
	return *updated, nil
}

// PermanentDelete removes the row for good. It requires the purge grant and
// a preceding soft delete.
func (s *service) PermanentDelete(ctx context.Context, actor user.Actor, id string) error {
	if err := s.enforcer.Require(actor, rbac.ResourceTask, rbac.ActionPurge); err != nil {
		s.logger.Warn("permanent delete forbidden",
			zap.String("task_id", id),
			zap.String("actor_role", actor.Role),
		)
		return err
	}
	current, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return taskerrors.ErrTaskNotFound
	}
	if !current.IsDeleted {
		return taskerrors.ErrTaskNotDeleted
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("permanent delete task success", zap.String("task_id", id))
	s.audit.Record(ctx, actor, "task", id, current.Title, "permanently-deleted", "")
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *service) ListByProject(ctx context.Context, projectID string) ([]Task, error) {
	return s.tasks.Query(ctx, store.Query[Task]{
		Where:   []store.Where{store.Eq("projectId", projectID)},
		Match:   func(t Task) bool { return !t.IsDeleted },
		OrderBy: "createdAt",
	})
}

func (s *service) ListByAssignee(ctx context.Context, userID string) ([]Task, error) {
	return s.tasks.Query(ctx, store.Query[Task]{
		Where:   []store.Where{store.Eq("assignedTo", userID)},
		Match:   func(t Task) bool { return !t.IsDeleted },
		OrderBy: "createdAt",
	})
}

// activeTask loads a task that exists and is not tombstoned.
func (s *service) activeTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, taskerrors.ErrTaskNotFound
	}
	if t.IsDeleted {
		return nil, taskerrors.ErrTaskDeleted
	}
	return t, nil
}

func (s *service) notifyAssigned(ctx context.Context, actor user.Actor, t Task) {
	_, err := s.fanout.FanOut(ctx, notify.Event{
		Kind:       notify.KindTaskAssigned,
		EntityType: "task",
		EntityID:   t.ID,
		EntityName: t.Title,
		Action:     "assigned",
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details: map[string]any{
			"assignedTo": t.AssignedTo,
			"priority":   t.Priority,
		},
	})
	if err != nil {
		s.logger.Error("task fan-out failed",
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
	}
}
