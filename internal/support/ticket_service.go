package support

import (
	"context"
	"net/http"
	"time"

	"go-workdesk/internal/activity"
	"go-workdesk/internal/notify"
	"go-workdesk/internal/rbac"
	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/shared/validate"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errTicketNotFound = apperror.New(apperror.CodeNotFound, "support ticket not found", http.StatusNotFound)
var errInvalidTransition = apperror.New(apperror.CodeInvalidState, "invalid ticket status transition", http.StatusBadRequest)

// NewTable binds the support tickets table.
func NewTable(s *store.Store) (*store.Table[Ticket], error) {
	return store.NewTable[Ticket](s, TableName, func(t Ticket) string { return t.ID })
}

//go:generate mockgen -source=ticket_service.go -destination=mock/ticket_service_mock.go -package=mock
type Service interface {
	File(ctx context.Context, actor user.Actor, req FileTicketRequest) (Ticket, error)
	UpdateStatus(ctx context.Context, actor user.Actor, id, status string) (Ticket, error)
	Get(ctx context.Context, id string) (*Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
}

type service struct {
	tickets  *store.Table[Ticket]
	fanout   *notify.Engine
	enforcer *rbac.Enforcer
	audit    *activity.Recorder
	logger   *zap.Logger
}

func NewService(
	tickets *store.Table[Ticket],
	fanout *notify.Engine,
	enforcer *rbac.Enforcer,
	audit *activity.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("support.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("support.service")
	}
	return &service{tickets: tickets, fanout: fanout, enforcer: enforcer, audit: audit, logger: l}
}

func (s *service) File(ctx context.Context, actor user.Actor, req FileTicketRequest) (Ticket, error) {
	if err := validate.Struct(req); err != nil {
		s.logger.Warn("file ticket validation failed", zap.Error(err))
		return Ticket{}, err
	}

	now := time.Now().UTC()
	t := Ticket{
		ID:          req.ID,
		UserID:      actor.ID,
		UserName:    actor.Name,
		Subject:     req.Subject,
		Description: req.Description,
		Category:    req.Category,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.tickets.Insert(ctx, t); err != nil {
		s.logger.Error("file ticket persist failed", zap.Error(err))
		return Ticket{}, err
	}
	s.logger.Info("file ticket success", zap.String("ticket_id", t.ID))

	if _, err := s.fanout.FanOut(ctx, notify.Event{
		Kind:       notify.KindSupportTicketFiled,
		EntityType: "support",
		EntityID:   t.ID,
		EntityName: t.Subject,
		Action:     "filed",
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details:    map[string]any{"category": t.Category},
	}); err != nil {
		s.logger.Error("support fan-out failed", zap.String("ticket_id", t.ID), zap.Error(err))
	}
	s.audit.Record(ctx, actor, "support", t.ID, t.Subject, "filed", "")
	return t, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor user.Actor, id, status string) (Ticket, error) {
	current, err := s.tickets.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if current == nil {
		return Ticket{}, errTicketNotFound
	}
	if !isAllowedStatusTransition(current.Status, status) {
		return Ticket{}, errInvalidTransition
	}
	if status == StatusResolved || status == StatusClosed {
		if err := s.enforcer.Require(actor, rbac.ResourceSupport, rbac.ActionResolve); err != nil {
			return Ticket{}, err
		}
	}

	updated, err := s.tickets.Update(ctx, id, map[string]any{
		"status":    status,
		"updatedAt": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return Ticket{}, err
	}
	s.logger.Info("ticket status updated",
		zap.String("ticket_id", id),
		zap.String("status", status),
	)
	s.audit.Record(ctx, actor, "support", id, current.Subject, "status-"+status, "")
	return *updated, nil
}

func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusOpen:
		return targetStatus == StatusInProgress || targetStatus == StatusClosed
	case StatusInProgress:
		return targetStatus == StatusResolved || targetStatus == StatusClosed
	case StatusResolved:
		return targetStatus == StatusClosed
	default:
		return false
	}
}

func (s *service) Get(ctx context.Context, id string) (*Ticket, error) {
	return s.tickets.Get(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]Ticket, error) {
	return s.tickets.Query(ctx, store.Query[Ticket]{
		Where:   []store.Where{store.Eq("userId", userID)},
		OrderBy: "createdAt",
		Desc:    true,
	})
}
