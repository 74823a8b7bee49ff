package store

import "context"

// RawRecord is the wire form of one row: the key plus its JSON document.
type RawRecord struct {
	ID   string
	Data []byte
}

// Op is a filter operator usable against indexed fields.
type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLte Op = "<="
)

// Where is one field condition. Values follow JSON typing: strings,
// float64 numbers, bools.
type Where struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Where { return Where{Field: field, Op: OpEq, Value: value} }

// Gte builds a lower-bound condition (inclusive).
func Gte(field string, value any) Where { return Where{Field: field, Op: OpGte, Value: value} }

// Lte builds an upper-bound condition (inclusive).
func Lte(field string, value any) Where { return Where{Field: field, Op: OpLte, Value: value} }

// RawQuery is the backend-level query shape: conditions, ordering and limit
// over one table. Limit 0 means unbounded.
type RawQuery struct {
	Where   []Where
	OrderBy string
	Desc    bool
	Limit   int
}

// Backend is the persistence contract the store runs on. The embedded
// SQLite backend is the default; a REST client implements the same contract
// for server-backed tables. Every call is individually atomic; there are no
// cross-call or cross-table transactions.
type Backend interface {
	// Get returns the raw document, or nil when the id is absent.
	Get(ctx context.Context, table, id string) ([]byte, error)
	// Put inserts or replaces the document under id.
	Put(ctx context.Context, table, id string, data []byte) error
	// BulkPut writes all records atomically with respect to the table.
	BulkPut(ctx context.Context, table string, recs []RawRecord) error
	// Delete removes the row; absent ids yield NOT_FOUND.
	Delete(ctx context.Context, table, id string) error
	// List returns matching rows honoring q's conditions, order and limit.
	List(ctx context.Context, table string, q RawQuery) ([]RawRecord, error)
	Close() error
}
