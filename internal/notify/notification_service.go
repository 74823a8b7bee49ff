package notify

import (
	"context"

	"go-workdesk/internal/store"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type service struct {
	notifications *store.Table[Notification]
	logger        *zap.Logger
}

func NewService(notifications *store.Table[Notification], logger ...*zap.Logger) Service {
	l := zap.L().Named("notify.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.service")
	}
	return &service{notifications: notifications, logger: l}
}

func (s *service) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	where := []store.Where{store.Eq("userId", userID)}
	if unreadOnly {
		where = append(where, store.Eq("isRead", false))
	}
	return s.notifications.Query(ctx, store.Query[Notification]{
		Where:   where,
		OrderBy: "createdAt",
		Desc:    true,
	})
}

// MarkRead flips isRead to true. The flag is monotonic: marking an already
// read notification is a no-op, and nothing ever reverts it.
func (s *service) MarkRead(ctx context.Context, id string) (*Notification, error) {
	current, err := s.notifications.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current != nil && current.IsRead {
		return current, nil
	}
	return s.notifications.Update(ctx, id, map[string]any{"isRead": true})
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.ListForUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	for i := range unread {
		unread[i].IsRead = true
	}
	if err := s.notifications.BulkPut(ctx, unread); err != nil {
		return 0, err
	}
	return len(unread), nil
}
