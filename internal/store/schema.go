package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"

	"go-workdesk/internal/shared/apperror"

	"go.uber.org/zap"
)

// TableSpec declares one keyed table and the record fields it indexes.
type TableSpec struct {
	Name    string
	Indexes []string
}

// Version is one step of the append-only schema chain. A version may
// introduce new tables or add indexes to existing ones; nothing is ever
// dropped.
type Version struct {
	Number int
	Tables []TableSpec
}

var identRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry holds the ordered schema versions and the effective table set
// they produce. It is immutable after construction.
type Registry struct {
	versions []Version
	indexed  map[string]map[string]bool // table -> indexed field set
}

// NewRegistry validates the version chain: strictly ascending version
// numbers, well-formed table and field names.
func NewRegistry(versions ...Version) (*Registry, error) {
	if len(versions) == 0 {
		return nil, apperror.New(apperror.CodeInvalidInput, "schema registry needs at least one version", http.StatusBadRequest)
	}
	sorted := make([]Version, len(versions))
	copy(sorted, versions)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	indexed := make(map[string]map[string]bool)
	prev := 0
	for _, v := range sorted {
		if v.Number <= prev {
			return nil, apperror.New(
				apperror.CodeInvalidInput,
				fmt.Sprintf("schema version %d is not strictly ascending", v.Number),
				http.StatusBadRequest,
			)
		}
		prev = v.Number
		for _, t := range v.Tables {
			if !identRe.MatchString(t.Name) {
				return nil, apperror.New(
					apperror.CodeInvalidInput,
					fmt.Sprintf("invalid table name %q in schema version %d", t.Name, v.Number),
					http.StatusBadRequest,
				)
			}
			fields := indexed[t.Name]
			if fields == nil {
				fields = make(map[string]bool)
				indexed[t.Name] = fields
			}
			for _, f := range t.Indexes {
				if !fieldRe.MatchString(f) {
					return nil, apperror.New(
						apperror.CodeInvalidInput,
						fmt.Sprintf("invalid indexed field %q on table %q", f, t.Name),
						http.StatusBadRequest,
					)
				}
				fields[f] = true
			}
		}
	}
	return &Registry{versions: sorted, indexed: indexed}, nil
}

var fieldRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Latest returns the highest version number known to this build.
func (r *Registry) Latest() int {
	return r.versions[len(r.versions)-1].Number
}

// Has reports whether the table exists in the effective schema.
func (r *Registry) Has(table string) bool {
	_, ok := r.indexed[table]
	return ok
}

// Indexed reports whether field is declared as indexed on table.
func (r *Registry) Indexed(table, field string) bool {
	return r.indexed[table][field]
}

// TableNames returns the effective table set in sorted order.
func (r *Registry) TableNames() []string {
	names := make([]string, 0, len(r.indexed))
	for name := range r.indexed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apply runs every version above the persisted marker, in ascending order,
// exactly once. Re-applying on an already current store is a no-op. A
// persisted marker above Latest means the file was written by a newer build
// and is rejected with SCHEMA_TOO_NEW.
func (r *Registry) apply(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_meta (k TEXT PRIMARY KEY, v INTEGER NOT NULL)`,
	); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "initialize schema meta table", http.StatusInternalServerError)
	}

	stored := 0
	err := db.QueryRowContext(ctx, `SELECT v FROM schema_meta WHERE k = 'version'`).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(err, apperror.CodeInternalError, "read schema version", http.StatusInternalServerError)
	}

	latest := r.Latest()
	if stored > latest {
		return apperror.Wrap(
			fmt.Errorf("stored version %d, latest known %d", stored, latest),
			apperror.CodeSchemaTooNew,
			"Stored schema version is newer than this build supports",
			http.StatusConflict,
		)
	}
	if stored == latest {
		logger.Debug("schema already current", zap.Int("version", stored))
		return nil
	}

	for _, v := range r.versions {
		if v.Number <= stored {
			continue
		}
		if err := applyVersion(ctx, db, v); err != nil {
			return err
		}
		logger.Info("schema version applied",
			zap.Int("version", v.Number),
			zap.Int("tables", len(v.Tables)),
		)
	}
	return nil
}

func applyVersion(ctx context.Context, db *sql.DB, v Version) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "begin migration tx", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	for _, t := range v.Tables {
		ddl := fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %q (id TEXT PRIMARY KEY, data TEXT NOT NULL)`,
			t.Name,
		)
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return apperror.Wrap(err,
				apperror.CodeInternalError,
				fmt.Sprintf("create table %s (schema v%d)", t.Name, v.Number),
				http.StatusInternalServerError,
			)
		}
		for _, f := range t.Indexes {
			idx := fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS %q ON %q (json_extract(data, '$.%s'))`,
				fmt.Sprintf("idx_%s_%s", t.Name, f), t.Name, f,
			)
			if _, err := tx.ExecContext(ctx, idx); err != nil {
				return apperror.Wrap(err,
					apperror.CodeInternalError,
					fmt.Sprintf("create index on %s.%s (schema v%d)", t.Name, f, v.Number),
					http.StatusInternalServerError,
				)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_meta (k, v) VALUES ('version', ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		v.Number,
	); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "record schema version", http.StatusInternalServerError)
	}
	return tx.Commit()
}
