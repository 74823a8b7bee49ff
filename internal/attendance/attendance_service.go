package attendance

import (
	"context"
	"math"
	"time"

	"go-workdesk/internal/activity"
	attendanceerrors "go-workdesk/internal/attendance/errors"
	"go-workdesk/internal/notify"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLateCutoff is the check-in time after which a record is late.
// Check-in at the cutoff itself still counts as present.
const DefaultLateCutoff = "09:15"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// NewTable binds the attendance table.
func NewTable(s *store.Store) (*store.Table[AttendanceRecord], error) {
	return store.NewTable[AttendanceRecord](s, TableName, func(a AttendanceRecord) string { return a.ID })
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, actor user.Actor, at time.Time) (AttendanceRecord, error)
	CheckOut(ctx context.Context, actor user.Actor, at time.Time) (AttendanceRecord, error)
	RequestRegularization(ctx context.Context, actor user.Actor, id, reason string) (AttendanceRecord, error)
	ResolveRegularization(ctx context.Context, actor user.Actor, id string, approve bool) (AttendanceRecord, error)
	Get(ctx context.Context, id string) (*AttendanceRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]AttendanceRecord, error)
}

type service struct {
	records    *store.Table[AttendanceRecord]
	fanout     *notify.Engine
	enforcer   *rbac.Enforcer
	audit      *activity.Recorder
	lateCutoff string
	logger     *zap.Logger
}

func NewService(
	records *store.Table[AttendanceRecord],
	fanout *notify.Engine,
	enforcer *rbac.Enforcer,
	audit *activity.Recorder,
	lateCutoff string,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if lateCutoff == "" {
		lateCutoff = DefaultLateCutoff
	}
	return &service{
		records:    records,
		fanout:     fanout,
		enforcer:   enforcer,
		audit:      audit,
		lateCutoff: lateCutoff,
		logger:     l,
	}
}

func (s *service) CheckIn(ctx context.Context, actor user.Actor, at time.Time) (AttendanceRecord, error) {
	date := at.Format(dateLayout)
	checkIn := at.Format(timeLayout)
	s.logger.Debug("check-in requested",
		zap.String("employee_id", actor.ID),
		zap.String("date", date),
		zap.String("check_in", checkIn),
	)

	existing, err := s.findByEmployeeAndDate(ctx, actor.ID, date)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if existing != nil {
		return AttendanceRecord{}, attendanceerrors.ErrAlreadyCheckedIn
	}

	status := StatusPresent
	if checkIn > s.lateCutoff {
		status = StatusLate
	}

	rec := AttendanceRecord{
		ID:           uuid.NewString(),
		EmployeeID:   actor.ID,
		EmployeeName: actor.Name,
		Date:         date,
		CheckIn:      checkIn,
		Status:       status,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		s.logger.Error("check-in persist failed", zap.Error(err))
		return AttendanceRecord{}, err
	}
	s.logger.Info("check-in success",
		zap.String("attendance_id", rec.ID),
		zap.String("employee_id", actor.ID),
		zap.String("status", status),
	)
	s.audit.Record(ctx, actor, "attendance", rec.ID, date, "check-in", checkIn)
	return rec, nil
}

func (s *service) CheckOut(ctx context.Context, actor user.Actor, at time.Time) (AttendanceRecord, error) {
	date := at.Format(dateLayout)
	checkOut := at.Format(timeLayout)

	rec, err := s.findByEmployeeAndDate(ctx, actor.ID, date)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if rec == nil {
		return AttendanceRecord{}, attendanceerrors.ErrNotCheckedIn
	}
	if rec.CheckOut != "" {
		return AttendanceRecord{}, attendanceerrors.ErrAlreadyCheckedOut
	}

	updated, err := s.records.Update(ctx, rec.ID, map[string]any{
		"checkOut":  checkOut,
		"workHours": workHours(rec.CheckIn, checkOut),
	})
	if err != nil {
		s.logger.Error("check-out persist failed",
			zap.String("attendance_id", rec.ID),
			zap.Error(err),
		)
		return AttendanceRecord{}, err
	}
	s.logger.Info("check-out success",
		zap.String("attendance_id", rec.ID),
		zap.Float64("work_hours", updated.WorkHours),
	)
	s.audit.Record(ctx, actor, "attendance", rec.ID, date, "check-out", checkOut)
	return *updated, nil
}

func (s *service) RequestRegularization(ctx context.Context, actor user.Actor, id, reason string) (AttendanceRecord, error) {
	if reason == "" {
		return AttendanceRecord{}, attendanceerrors.ErrReasonRequired
	}

	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if rec == nil {
		return AttendanceRecord{}, attendanceerrors.ErrRecordNotFound
	}
	if rec.EmployeeID != actor.ID {
		return AttendanceRecord{}, attendanceerrors.ErrNotOwner
	}
	if rec.Status != StatusLate && rec.Status != StatusAbsent {
		return AttendanceRecord{}, attendanceerrors.ErrNotRegularizable
	}
	if rec.Regularization != nil {
		return AttendanceRecord{}, attendanceerrors.ErrRegularizationExists
	}

	updated, err := s.records.Update(ctx, id, map[string]any{
		"regularization": Regularization{Reason: reason, Status: RegularizationPending},
	})
	if err != nil {
		return AttendanceRecord{}, err
	}
	s.logger.Info("regularization requested",
		zap.String("attendance_id", id),
		zap.String("employee_id", actor.ID),
	)

	s.notifyFanout(ctx, notify.Event{
		Kind:       notify.KindRegularizationRequested,
		EntityType: "attendance",
		EntityID:   id,
		EntityName: rec.Date,
		Action:     "requested",
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details: map[string]any{
			"date":       rec.Date,
			"employeeId": rec.EmployeeID,
		},
	})
	s.audit.Record(ctx, actor, "attendance", id, rec.Date, "regularization-requested", reason)
	return *updated, nil
}

func (s *service) ResolveRegularization(ctx context.Context, actor user.Actor, id string, approve bool) (AttendanceRecord, error) {
	if err := s.enforcer.Require(actor, rbac.ResourceAttendance, rbac.ActionRegularize); err != nil {
		s.logger.Warn("resolve regularization forbidden",
			zap.String("attendance_id", id),
			zap.String("actor_role", actor.Role),
		)
		return AttendanceRecord{}, err
	}

	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return AttendanceRecord{}, err
	}
	if rec == nil {
		return AttendanceRecord{}, attendanceerrors.ErrRecordNotFound
	}
	if rec.Regularization == nil || rec.Regularization.Status != RegularizationPending {
		return AttendanceRecord{}, attendanceerrors.ErrRegularizationNotPending
	}

	action := RegularizationRejected
	partial := map[string]any{
		"regularization": Regularization{Reason: rec.Regularization.Reason, Status: RegularizationRejected},
	}
	if approve {
		// Approval reclassifies the day; rejection leaves the status as is.
		action = RegularizationApproved
		partial["regularization"] = Regularization{Reason: rec.Regularization.Reason, Status: RegularizationApproved}
		partial["status"] = StatusPresent
	}

	updated, err := s.records.Update(ctx, id, partial)
	if err != nil {
		s.logger.Error("resolve regularization persist failed",
			zap.String("attendance_id", id),
			zap.Error(err),
		)
		return AttendanceRecord{}, err
	}
	s.logger.Info("resolve regularization success",
		zap.String("attendance_id", id),
		zap.String("resolution", action),
	)

	s.notifyFanout(ctx, notify.Event{
		Kind:       notify.KindRegularizationResolved,
		EntityType: "attendance",
		EntityID:   id,
		EntityName: rec.Date,
		Action:     action,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details: map[string]any{
			"date":       rec.Date,
			"employeeId": rec.EmployeeID,
		},
	})
	s.audit.Record(ctx, actor, "attendance", id, rec.Date, "regularization-"+action, "")
	return *updated, nil
}

func (s *service) Get(ctx context.Context, id string) (*AttendanceRecord, error) {
	return s.records.Get(ctx, id)
}

func (s *service) ListByEmployee(ctx context.Context, employeeID string) ([]AttendanceRecord, error) {
	return s.records.Query(ctx, store.Query[AttendanceRecord]{
		Where:   []store.Where{store.Eq("employeeId", employeeID)},
		OrderBy: "date",
		Desc:    true,
	})
}

func (s *service) findByEmployeeAndDate(ctx context.Context, employeeID, date string) (*AttendanceRecord, error) {
	recs, err := s.records.Query(ctx, store.Query[AttendanceRecord]{
		Where: []store.Where{
			store.Eq("employeeId", employeeID),
			store.Eq("date", date),
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

func (s *service) notifyFanout(ctx context.Context, ev notify.Event) {
	if _, err := s.fanout.FanOut(ctx, ev); err != nil {
		s.logger.Error("attendance fan-out failed",
			zap.String("event_kind", ev.Kind),
			zap.String("entity_id", ev.EntityID),
			zap.Error(err),
		)
	}
}

// workHours computes the span between two "HH:MM" stamps, clamped at zero
// and rounded to one decimal.
func workHours(checkIn, checkOut string) float64 {
	in, err := time.Parse(timeLayout, checkIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(timeLayout, checkOut)
	if err != nil {
		return 0
	}
	h := out.Sub(in).Hours()
	if h < 0 {
		return 0
	}
	return math.Round(h*10) / 10
}
