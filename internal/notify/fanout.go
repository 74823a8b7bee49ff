// Package notify turns one domain event into per-recipient Notification
// records. Recipient resolution is a registry keyed by event kind, so new
// kinds are additive. Fan-out never mutates the triggering entity and never
// fails the triggering mutation: per-recipient write failures are logged
// and skipped.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go-workdesk/internal/shared/apperror"
	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"go.uber.org/zap"
)

// Event is one domain transition worth notifying about. Kind selects the
// routing rule; the remaining fields describe the entity and the actor.
type Event struct {
	Kind       string
	EntityType string
	EntityID   string
	EntityName string
	Action     string
	ActorID    string
	ActorName  string
	Details    map[string]any
}

// Detail returns a string payload field, or "" when absent.
func (ev Event) Detail(key string) string {
	if s, ok := ev.Details[key].(string); ok {
		return s
	}
	return ""
}

// Resolver computes the recipient user ids for an event, either by role
// lookup against the users table or directly from the event payload.
type Resolver func(ctx context.Context, users *store.Table[user.User], ev Event) ([]string, error)

// Rule is one registered event kind: how to route it and how to render the
// notification.
type Rule struct {
	Type       string
	Priority   string
	Title      func(ev Event) string
	Message    func(ev Event) string
	Recipients Resolver
}

// NewTable binds the notifications table.
func NewTable(s *store.Store) (*store.Table[Notification], error) {
	return store.NewTable[Notification](s, TableName, func(n Notification) string { return n.ID })
}

type Engine struct {
	notifications *store.Table[Notification]
	users         *store.Table[user.User]
	logger        *zap.Logger

	mu    sync.RWMutex
	rules map[string]Rule

	stampMu   sync.Mutex
	lastStamp int64
}

// NewEngine builds a fan-out engine with the default routing rules
// registered.
func NewEngine(notifications *store.Table[Notification], users *store.Table[user.User], logger ...*zap.Logger) *Engine {
	l := zap.L().Named("notify.fanout")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.fanout")
	}
	e := &Engine{
		notifications: notifications,
		users:         users,
		logger:        l,
		rules:         make(map[string]Rule),
	}
	registerDefaults(e)
	return e
}

// Register adds or replaces the rule for an event kind.
func (e *Engine) Register(kind string, rule Rule) {
	e.mu.Lock()
	e.rules[kind] = rule
	e.mu.Unlock()
}

// FanOut resolves the recipient set for ev and writes one notification per
// recipient. It returns the number of notifications written. Only recipient
// resolution can fail the call; individual write failures are isolated per
// recipient. The engine does not deduplicate repeated calls; callers invoke
// it exactly once per logical domain transition.
func (e *Engine) FanOut(ctx context.Context, ev Event) (int, error) {
	e.mu.RLock()
	rule, ok := e.rules[ev.Kind]
	e.mu.RUnlock()
	if !ok {
		return 0, apperror.New(
			apperror.CodeRecipientResolution,
			fmt.Sprintf("no recipient resolver registered for event kind %q", ev.Kind),
			http.StatusInternalServerError,
		)
	}

	recipients, err := rule.Recipients(ctx, e.users, ev)
	if err != nil {
		return 0, apperror.Wrap(err,
			apperror.CodeRecipientResolution,
			fmt.Sprintf("resolve recipients for event kind %q", ev.Kind),
			http.StatusInternalServerError,
		)
	}

	delivered := 0
	seen := make(map[string]bool, len(recipients))
	for _, userID := range recipients {
		if userID == "" || seen[userID] {
			continue
		}
		seen[userID] = true

		n := Notification{
			ID:        e.nextID(userID),
			UserID:    userID,
			Type:      rule.Type,
			Priority:  rule.Priority,
			Title:     rule.Title(ev),
			Message:   rule.Message(ev),
			Metadata:  ev.Details,
			CreatedAt: time.Now().UTC(),
			IsRead:    false,
		}
		if err := e.notifications.Put(ctx, n); err != nil {
			e.logger.Error("notification write failed",
				zap.String("event_kind", ev.Kind),
				zap.String("recipient_id", userID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	e.logger.Info("fan-out complete",
		zap.String("event_kind", ev.Kind),
		zap.String("entity_id", ev.EntityID),
		zap.Int("recipients", len(seen)),
		zap.Int("delivered", delivered),
	)
	return delivered, nil
}

// nextID composes a monotonic millisecond stamp with the recipient id so
// same-millisecond fan-outs cannot collide.
func (e *Engine) nextID(recipientID string) string {
	e.stampMu.Lock()
	now := time.Now().UnixMilli()
	if now <= e.lastStamp {
		now = e.lastStamp + 1
	}
	e.lastStamp = now
	e.stampMu.Unlock()
	return fmt.Sprintf("%d-%s", now, recipientID)
}
