package activity

import (
	"context"
	"time"

	"go-workdesk/internal/store"
	"go-workdesk/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewTable binds the activity log table.
func NewTable(s *store.Store) (*store.Table[Entry], error) {
	return store.NewTable[Entry](s, TableName, func(e Entry) string { return e.ID })
}

// Recorder appends audit entries for domain mutations. A nil Recorder is
// valid and records nothing, so wiring it is optional. Audit writes are
// best-effort: a failure is logged and never fails the mutation.
type Recorder struct {
	entries *store.Table[Entry]
	logger  *zap.Logger
}

func NewRecorder(entries *store.Table[Entry], logger ...*zap.Logger) *Recorder {
	l := zap.L().Named("activity")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("activity")
	}
	return &Recorder{entries: entries, logger: l}
}

func (r *Recorder) Record(ctx context.Context, actor user.Actor, entityType, entityID, entityName, action, details string) {
	if r == nil {
		return
	}
	e := Entry{
		ID:         uuid.NewString(),
		UserID:     actor.ID,
		UserName:   actor.Name,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.entries.Put(ctx, e); err != nil {
		r.logger.Warn("activity log write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// Recent returns the newest entries, capped at limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return r.entries.Query(ctx, store.Query[Entry]{
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   limit,
	})
}
