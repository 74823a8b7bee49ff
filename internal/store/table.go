package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go-workdesk/internal/shared/apperror"
)

// Table is the typed view over one registered table. T must marshal to a
// JSON object; id extracts the record key.
type Table[T any] struct {
	store *Store
	name  string
	id    func(T) string
}

// NewTable binds a typed table to a name the schema registry knows about.
func NewTable[T any](s *Store, name string, id func(T) string) (*Table[T], error) {
	if err := s.checkTable(name); err != nil {
		return nil, err
	}
	return &Table[T]{store: s, name: name, id: id}, nil
}

func (t *Table[T]) Name() string { return t.name }

// Get returns the record, or nil when the id is absent.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := t.store.Get(ctx, t.name, id)
	if err != nil || data == nil {
		return nil, err
	}
	return decode[T](data)
}

// Put inserts or replaces rec under its own id.
func (t *Table[T]) Put(ctx context.Context, rec T) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	return t.store.Put(ctx, t.name, t.id(rec), data)
}

// Insert writes rec, failing with CONFLICT when its id is already taken.
func (t *Table[T]) Insert(ctx context.Context, rec T) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	return t.store.Insert(ctx, t.name, t.id(rec), data)
}

// BulkPut writes all records atomically with respect to this table.
func (t *Table[T]) BulkPut(ctx context.Context, recs []T) error {
	raw := make([]RawRecord, len(recs))
	for i, rec := range recs {
		data, err := encode(rec)
		if err != nil {
			return err
		}
		raw[i] = RawRecord{ID: t.id(rec), Data: data}
	}
	return t.store.BulkPut(ctx, t.name, raw)
}

// Update merges partial into the stored record and returns the result.
// Missing ids yield NOT_FOUND.
func (t *Table[T]) Update(ctx context.Context, id string, partial map[string]any) (*T, error) {
	merged, err := t.store.Update(ctx, t.name, id, partial)
	if err != nil {
		return nil, err
	}
	return decode[T](merged)
}

// Delete removes the record; absent ids yield NOT_FOUND.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.store.Delete(ctx, t.name, id)
}

// All returns every record in the table.
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	return t.Query(ctx, Query[T]{})
}

func encode[T any](rec T) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "encode record", http.StatusInternalServerError)
	}
	return data, nil
}

func decode[T any](data []byte) (*T, error) {
	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperror.Wrap(err,
			apperror.CodeInternalError,
			fmt.Sprintf("decode record: %s", string(data)),
			http.StatusInternalServerError,
		)
	}
	return &rec, nil
}
