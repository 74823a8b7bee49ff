package leave

import (
	"context"
	"time"

	"go-workdesk/internal/activity"
	leaveerrors "go-workdesk/internal/leave/errors"
	"go-workdesk/internal/notify"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/shared/validate"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTable binds the leave requests table.
func NewTable(s *store.Store) (*store.Table[LeaveRequest], error) {
	return store.NewTable[LeaveRequest](s, TableName, func(l LeaveRequest) string { return l.ID })
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, actor user.Actor, req ApplyLeaveRequest) (LeaveRequest, error)
	Approve(ctx context.Context, actor user.Actor, id string) (LeaveRequest, error)
	Reject(ctx context.Context, actor user.Actor, id, rejectionReason string) (LeaveRequest, error)
	Cancel(ctx context.Context, actor user.Actor, id string) (LeaveRequest, error)
	Get(ctx context.Context, id string) (*LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	ListPending(ctx context.Context) ([]LeaveRequest, error)
}

type service struct {
	leaves   *store.Table[LeaveRequest]
	fanout   *notify.Engine
	enforcer *rbac.Enforcer
	audit    *activity.Recorder
	logger   *zap.Logger
}

func NewService(
	leaves *store.Table[LeaveRequest],
	fanout *notify.Engine,
	enforcer *rbac.Enforcer,
	audit *activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{leaves: leaves, fanout: fanout, enforcer: enforcer, audit: audit, logger: l}
}

func (s *service) Apply(ctx context.Context, actor user.Actor, req ApplyLeaveRequest) (LeaveRequest, error) {
	s.logger.Debug("apply leave requested",
		zap.String("actor_id", actor.ID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if err := validate.Struct(req); err != nil {
		s.logger.Warn("apply leave validation failed", zap.Error(err))
		return LeaveRequest{}, err
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveRequest{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveRequest{}, err
	}
	if startDate.After(endDate) {
		s.logger.Warn("apply leave rejected, end before start",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequest{}, leaveerrors.ErrInvalidDateRange
	}

	days := int(endDate.Sub(startDate).Hours()/24) + 1
	l := LeaveRequest{
		ID:           req.ID,
		EmployeeID:   actor.ID,
		EmployeeName: actor.Name,
		LeaveType:    req.LeaveType,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Days:         days,
		Reason:       req.Reason,
		Status:       StatusPending,
		AppliedOn:    time.Now().UTC(),
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}

	if err := s.leaves.Insert(ctx, l); err != nil {
		s.logger.Error("apply leave persist failed", zap.Error(err))
		return LeaveRequest{}, err
	}
	s.logger.Info("apply leave success",
		zap.String("leave_id", l.ID),
		zap.String("employee_id", l.EmployeeID),
		zap.Int("days", days),
	)

	s.notifyFanout(ctx, notify.Event{
		Kind:       notify.KindLeaveSubmitted,
		EntityType: "leave",
		EntityID:   l.ID,
		EntityName: l.StartDate + " to " + l.EndDate,
		Action:     "submitted",
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details: map[string]any{
			"leaveType":  l.LeaveType,
			"employeeId": l.EmployeeID,
		},
	})
	s.audit.Record(ctx, actor, "leave", l.ID, l.LeaveType, "applied", "")
	return l, nil
}

func (s *service) Approve(ctx context.Context, actor user.Actor, id string) (LeaveRequest, error) {
	return s.decide(ctx, actor, id, StatusApproved, nil)
}

func (s *service) Reject(ctx context.Context, actor user.Actor, id, rejectionReason string) (LeaveRequest, error) {
	if rejectionReason == "" {
		return LeaveRequest{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, actor, id, StatusRejected, &rejectionReason)
}

// decide moves a pending request into one of its terminal states. Approved
// and rejected never transition again.
func (s *service) decide(ctx context.Context, actor user.Actor, id, targetStatus string, rejectionReason *string) (LeaveRequest, error) {
	s.logger.Debug("decide leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("target_status", targetStatus),
	)

	if err := s.enforcer.Require(actor, rbac.ResourceLeave, rbac.ActionDecide); err != nil {
		s.logger.Warn("decide leave forbidden",
			zap.String("leave_id", id),
			zap.String("actor_role", actor.Role),
		)
		return LeaveRequest{}, err
	}

	l, err := s.leaves.Get(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if l == nil {
		return LeaveRequest{}, leaveerrors.ErrLeaveNotFound
	}
	if l.Status != StatusPending {
		s.logger.Warn("decide leave invalid transition",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveRequest{}, leaveerrors.ErrInvalidStatusTransition
	}

	partial := map[string]any{"status": targetStatus}
	if targetStatus == StatusApproved {
		partial["approvedBy"] = actor.ID
		partial["approvedOn"] = time.Now().UTC().Format(time.RFC3339Nano)
	} else {
		partial["rejectionReason"] = *rejectionReason
	}

	updated, err := s.leaves.Update(ctx, id, partial)
	if err != nil {
		s.logger.Error("decide leave persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveRequest{}, err
	}
	s.logger.Info("decide leave success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
	)

	s.notifyFanout(ctx, notify.Event{
		Kind:       notify.KindLeaveDecided,
		EntityType: "leave",
		EntityID:   id,
		EntityName: updated.StartDate + " to " + updated.EndDate,
		Action:     targetStatus,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details:    map[string]any{"employeeId": updated.EmployeeID},
	})
	s.audit.Record(ctx, actor, "leave", id, updated.LeaveType, targetStatus, "")
	return *updated, nil
}

func (s *service) Cancel(ctx context.Context, actor user.Actor, id string) (LeaveRequest, error) {
	l, err := s.leaves.Get(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if l == nil {
		return LeaveRequest{}, leaveerrors.ErrLeaveNotFound
	}
	if l.EmployeeID != actor.ID {
		return LeaveRequest{}, leaveerrors.ErrNotOwner
	}
	if l.Status != StatusPending {
		return LeaveRequest{}, leaveerrors.ErrInvalidStatusTransition
	}

	updated, err := s.leaves.Update(ctx, id, map[string]any{"status": StatusCancelled})
	if err != nil {
		return LeaveRequest{}, err
	}
	s.logger.Info("cancel leave success", zap.String("leave_id", id))
	s.audit.Record(ctx, actor, "leave", id, updated.LeaveType, "cancelled", "")
	return *updated, nil
}

func (s *service) Get(ctx context.Context, id string) (*LeaveRequest, error) {
	return s.leaves.Get(ctx, id)
}

func (s *service) ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	return s.leaves.Query(ctx, store.Query[LeaveRequest]{
		Where:   []store.Where{store.Eq("employeeId", employeeID)},
		OrderBy: "appliedOn",
		Desc:    true,
	})
}

func (s *service) ListPending(ctx context.Context) ([]LeaveRequest, error) {
	return s.leaves.Query(ctx, store.Query[LeaveRequest]{
		Where:   []store.Where{store.Eq("status", StatusPending)},
		OrderBy: "appliedOn",
	})
}

// notifyFanout keeps the domain mutation durable even when notification
// delivery fails: the error is logged, never propagated.
func (s *service) notifyFanout(ctx context.Context, ev notify.Event) {
	if _, err := s.fanout.FanOut(ctx, ev); err != nil {
		s.logger.Error("leave fan-out failed",
			zap.String("event_kind", ev.Kind),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}
