package store

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// QueryFunc is a restartable query evaluated on subscribe and after every
// committed write.
type QueryFunc func(ctx context.Context) (any, error)

// Observer receives each re-evaluated result.
type Observer func(result any)

// Subscription is the handle for one live query.
type Subscription struct {
	hub      *hub
	id       uint64
	closed   atomic.Bool
	queryFn  QueryFunc
	observer Observer
}

// Unsubscribe synchronously stops future re-evaluation. It is idempotent.
// A re-evaluation that was already in flight when Unsubscribe was called is
// dropped before delivery; an observer invocation that had already started
// may still complete, which callers discard via this handle's identity.
func (sub *Subscription) Unsubscribe() {
	if !sub.closed.CompareAndSwap(false, true) {
		return
	}
	sub.hub.mu.Lock()
	delete(sub.hub.subs, sub.id)
	sub.hub.mu.Unlock()
}

// Active reports whether the subscription still receives updates.
func (sub *Subscription) Active() bool {
	return !sub.closed.Load()
}

// hub is the observer arena: every live subscription, re-run after each
// commit. Invalidation is deliberately coarse: any write to any table
// re-evaluates every subscription, trading redundant evaluation for the
// guarantee that no update is missed.
type hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	logger *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		subs:   make(map[uint64]*Subscription),
		logger: logger.Named("subscriptions"),
	}
}

func (h *hub) subscribe(ctx context.Context, queryFn QueryFunc, observer Observer) (*Subscription, any, error) {
	current, err := queryFn(ctx)
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	h.nextID++
	sub := &Subscription{
		hub:      h,
		id:       h.nextID,
		queryFn:  queryFn,
		observer: observer,
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	return sub, current, nil
}

// broadcast re-runs every live subscription in the writer's call path, so a
// subscriber observes the write's result before the writer can issue its
// next one. Query and delivery happen outside the hub lock; observers may
// themselves write to the store.
func (h *hub) broadcast(ctx context.Context, table string) {
	h.mu.Lock()
	active := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		active = append(active, sub)
	}
	h.mu.Unlock()

	for _, sub := range active {
		if sub.closed.Load() {
			continue
		}
		result, err := sub.queryFn(ctx)
		if err != nil {
			h.logger.Warn("subscription re-evaluation failed",
				zap.String("table", table),
				zap.Uint64("subscription_id", sub.id),
				zap.Error(err),
			)
			continue
		}
		if sub.closed.Load() {
			continue
		}
		sub.observer(result)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	for id, sub := range h.subs {
		sub.closed.Store(true)
		delete(h.subs, id)
	}
	h.mu.Unlock()
}
