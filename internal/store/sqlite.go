package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-workdesk/internal/shared/apperror"

	_ "modernc.org/sqlite"
)

// openSQLite opens the store file and applies the connection pragmas the
// embedded single-writer model relies on.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "open sqlite database", http.StatusInternalServerError)
	}
	// Serialize writers at the connection level; the store's contract is
	// per-call atomicity, not concurrency.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA synchronous = NORMAL`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "apply sqlite pragma", http.StatusInternalServerError)
		}
	}
	return db, nil
}

type sqliteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an open database as a record Backend. Tables are
// (id TEXT PRIMARY KEY, data TEXT) pairs created by the schema registry.
func NewSQLiteBackend(db *sql.DB) Backend {
	return &sqliteBackend{db: db}
}

func (b *sqliteBackend) Get(ctx context.Context, table, id string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT data FROM %q WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "read record", http.StatusInternalServerError)
	}
	return data, nil
}

func (b *sqliteBackend) Put(ctx context.Context, table, id string, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		fmt.Sprintf(
			`INSERT INTO %q (id, data) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
			table,
		),
		id, string(data),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "write record", http.StatusInternalServerError)
	}
	return nil
}

func (b *sqliteBackend) BulkPut(ctx context.Context, table string, recs []RawRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "begin bulk write", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(
			`INSERT INTO %q (id, data) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
			table,
		),
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "prepare bulk write", http.StatusInternalServerError)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, r.ID, string(r.Data)); err != nil {
			return apperror.Wrap(err, apperror.CodeInternalError, "bulk write record", http.StatusInternalServerError)
		}
	}
	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "commit bulk write", http.StatusInternalServerError)
	}
	return nil
}

func (b *sqliteBackend) Delete(ctx context.Context, table, id string) error {
	res, err := b.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE id = ?`, table), id,
	)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "delete record", http.StatusInternalServerError)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "delete record", http.StatusInternalServerError)
	}
	if n == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (b *sqliteBackend) List(ctx context.Context, table string, q RawQuery) ([]RawRecord, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT id, data FROM %q`, table)

	args := make([]any, 0, len(q.Where)+1)
	for i, w := range q.Where {
		if i == 0 {
			sb.WriteString(` WHERE `)
		} else {
			sb.WriteString(` AND `)
		}
		fmt.Fprintf(&sb, `json_extract(data, '$.%s') %s ?`, w.Field, w.Op)
		args = append(args, w.Value)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&sb, ` ORDER BY json_extract(data, '$.%s')`, q.OrderBy)
		if q.Desc {
			sb.WriteString(` DESC`)
		}
	}
	if q.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, q.Limit)
	}

	rows, err := b.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "list records", http.StatusInternalServerError)
	}
	defer rows.Close()

	var out []RawRecord
	for rows.Next() {
		var r RawRecord
		if err := rows.Scan(&r.ID, &r.Data); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternalError, "scan record", http.StatusInternalServerError)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "list records", http.StatusInternalServerError)
	}
	return out, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
