// Package store is the embedded reactive record store: schema-versioned
// keyed tables over SQLite (or a remote backend implementing the same
// contract), declarative queries, and live subscriptions re-evaluated after
// every committed write.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go-workdesk/internal/shared/apperror"

	"go.uber.org/zap"
)

var errDuplicateID = apperror.New(
	apperror.CodeConflict,
	"record id already exists",
	http.StatusConflict,
)

type Store struct {
	backend  Backend
	registry *Registry
	hub      *hub
	logger   *zap.Logger

	// mu serializes read-modify-write sequences (Update, Insert) so each
	// call stays atomic over a backend that only offers single operations.
	mu sync.Mutex
}

// Open opens (or creates) the SQLite-backed store at path and brings its
// schema up to the registry's latest version.
func Open(ctx context.Context, path string, registry *Registry, logger ...*zap.Logger) (*Store, error) {
	l := zap.L().Named("store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("store")
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := registry.apply(ctx, db, l); err != nil {
		db.Close()
		return nil, err
	}
	l.Info("store opened",
		zap.String("path", path),
		zap.Int("schema_version", registry.Latest()),
	)
	return NewWithBackend(NewSQLiteBackend(db), registry, l), nil
}

// NewWithBackend builds a store over an already provisioned backend, e.g.
// the remote REST client. No migration runs here; the backend owner is
// responsible for its schema.
func NewWithBackend(backend Backend, registry *Registry, logger ...*zap.Logger) *Store {
	l := zap.L().Named("store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	s := &Store{
		backend:  backend,
		registry: registry,
		logger:   l,
	}
	s.hub = newHub(l)
	return s
}

// Registry exposes the schema the store was opened with.
func (s *Store) Registry() *Registry {
	return s.registry
}

func (s *Store) Close() error {
	s.hub.closeAll()
	return s.backend.Close()
}

func (s *Store) checkTable(table string) error {
	if !s.registry.Has(table) {
		return apperror.New(
			apperror.CodeInvalidInput,
			fmt.Sprintf("unknown table %q", table),
			http.StatusBadRequest,
		)
	}
	return nil
}

// Get returns the raw document under id, or nil when absent.
func (s *Store) Get(ctx context.Context, table, id string) ([]byte, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	return s.backend.Get(ctx, table, id)
}

// Put inserts or replaces one record and notifies subscribers.
func (s *Store) Put(ctx context.Context, table, id string, data []byte) error {
	if err := s.checkTable(table); err != nil {
		return err
	}
	if err := s.backend.Put(ctx, table, id, data); err != nil {
		return err
	}
	s.hub.broadcast(ctx, table)
	return nil
}

// Insert writes a record only if its id is not taken yet, failing with
// CONFLICT otherwise. This backs the "client-generated ids are unique at
// creation" invariant.
func (s *Store) Insert(ctx context.Context, table, id string, data []byte) error {
	if err := s.checkTable(table); err != nil {
		return err
	}
	s.mu.Lock()
	existing, err := s.backend.Get(ctx, table, id)
	if err == nil && existing != nil {
		err = errDuplicateID
	}
	if err == nil {
		err = s.backend.Put(ctx, table, id, data)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.broadcast(ctx, table)
	return nil
}

// BulkPut writes all records atomically with respect to the table, then
// notifies subscribers once.
func (s *Store) BulkPut(ctx context.Context, table string, recs []RawRecord) error {
	if err := s.checkTable(table); err != nil {
		return err
	}
	if err := s.backend.BulkPut(ctx, table, recs); err != nil {
		return err
	}
	s.hub.broadcast(ctx, table)
	return nil
}

// Update merges partial into the stored document. Missing ids yield
// NOT_FOUND; the merge replaces top-level fields only.
func (s *Store) Update(ctx context.Context, table, id string, partial map[string]any) ([]byte, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}

	s.mu.Lock()
	merged, err := s.mergeLocked(ctx, table, id, partial)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.hub.broadcast(ctx, table)
	return merged, nil
}

func (s *Store) mergeLocked(ctx context.Context, table, id string, partial map[string]any) ([]byte, error) {
	current, err := s.backend.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperror.ErrNotFound
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(current, &doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "decode stored record", http.StatusInternalServerError)
	}
	for k, v := range partial {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "encode merged record", http.StatusInternalServerError)
	}
	if err := s.backend.Put(ctx, table, id, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes the record; absent ids yield NOT_FOUND.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	if err := s.checkTable(table); err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, table, id); err != nil {
		return err
	}
	s.hub.broadcast(ctx, table)
	return nil
}

// List runs a raw query against the backend.
func (s *Store) List(ctx context.Context, table string, q RawQuery) ([]RawRecord, error) {
	if err := s.checkTable(table); err != nil {
		return nil, err
	}
	return s.backend.List(ctx, table, q)
}

// Subscribe registers queryFn as a live query: it runs once synchronously
// and its current result is returned, then it re-runs after every committed
// write to any table, pushing fresh results to observer. See Subscription
// for cancellation semantics.
func (s *Store) Subscribe(ctx context.Context, queryFn QueryFunc, observer Observer) (*Subscription, any, error) {
	return s.hub.subscribe(ctx, queryFn, observer)
}
