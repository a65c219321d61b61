package infra

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
)

const sqliteMediaColumns = `id, type, url, title, description, status, created_at, updated_at, deleted_at`

// SQLiteMediaRepo stores media in a single SQLite file. Timestamps are unix
// nanoseconds so ORDER BY created_at is exact.
type SQLiteMediaRepo struct {
	db        *sql.DB
	writeLock sync.Mutex
	now       func() time.Time
}

var _ ports.MediaRepository = (*SQLiteMediaRepo)(nil)

func NewSQLiteMediaRepo(ctx context.Context, path string) (*SQLiteMediaRepo, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeSQLite(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLiteMediaRepo{db: db, now: time.Now}, nil
}

// sqliteDSN appends the connection pragmas to path. The driver runs them on
// every new pooled connection, not only the first one.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

func initializeSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS media (
			id          TEXT    PRIMARY KEY,
			type        TEXT    CHECK (type IN ('audio', 'video', 'image')),
			url         TEXT    NOT NULL CHECK (url <> ''),
			title       TEXT    NOT NULL CHECK (title <> ''),
			description TEXT    NOT NULL CHECK (description <> ''),
			status      TEXT    NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
			created_at  INTEGER NOT NULL,
			updated_at  INTEGER NOT NULL,
			deleted_at  INTEGER
		);
		CREATE INDEX IF NOT EXISTS media_status_created_at_idx ON media (status, created_at DESC);
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (r *SQLiteMediaRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteMediaRepo) FindUnique(ctx context.Context, id string) (*models.Media, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteMediaColumns+` FROM media WHERE id = ?`, id)

	m, err := scanSQLiteMedia(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, sqliteStoreError("find media", err)
	}
	return m, nil
}

func (r *SQLiteMediaRepo) FindMany(ctx context.Context, f ports.MediaFilter) ([]models.Media, error) {
	var (
		where []string
		args  []any
	)

	if f.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Search != nil {
		// instr is a literal, case-sensitive substring match.
		where = append(where, "(instr(title, ?) > 0 OR instr(description, ?) > 0)")
		args = append(args, *f.Search, *f.Search)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + sqliteMediaColumns + ` FROM media`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	take := -1
	if f.Take > 0 {
		take = f.Take
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, take, f.Skip)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, sqliteStoreError("find many media", err)
	}
	defer rows.Close()

	out := []models.Media{}
	for rows.Next() {
		m, err := scanSQLiteMedia(rows)
		if err != nil {
			return nil, sqliteStoreError("scan media", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, sqliteStoreError("find many media", err)
	}

	return out, nil
}

func (r *SQLiteMediaRepo) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	now := r.now().UTC().UnixNano()

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO media (id, type, url, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+sqliteMediaColumns,
		media.ID,
		typeArg(media.Type),
		media.URL,
		media.Title,
		media.Description,
		string(media.Status),
		now,
		now,
	)

	m, err := scanSQLiteMedia(row)
	if err != nil {
		return nil, sqliteStoreError("insert media", err)
	}
	return m, nil
}

func (r *SQLiteMediaRepo) Update(ctx context.Context, id string, p models.MediaPatch) (*models.Media, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Type != nil {
		set("type", string(*p.Type))
	}
	if p.URL != nil {
		set("url", *p.URL)
	}
	if p.Title != nil {
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.DeletedAt != nil {
		set("deleted_at", p.DeletedAt.UTC().UnixNano())
	}
	set("updated_at", r.now().UTC().UnixNano())
	args = append(args, id)

	row := r.db.QueryRowContext(ctx,
		`UPDATE media SET `+strings.Join(sets, ", ")+` WHERE id = ? RETURNING `+sqliteMediaColumns,
		args...,
	)

	m, err := scanSQLiteMedia(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ports.StoreError{Op: "update media", Cause: ports.CauseRecordNotFound, Err: err}
		}
		return nil, sqliteStoreError("update media", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteMedia(row rowScanner) (*models.Media, error) {
	var (
		m                    models.Media
		typ                  sql.NullString
		status               string
		createdAt, updatedAt int64
		deletedAt            sql.NullInt64
	)

	if err := row.Scan(
		&m.ID,
		&typ,
		&m.URL,
		&m.Title,
		&m.Description,
		&status,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	if typ.Valid {
		t := models.MediaType(typ.String)
		m.Type = &t
	}
	m.Status = models.Status(status)
	m.CreatedAt = time.Unix(0, createdAt).UTC()
	m.UpdatedAt = time.Unix(0, updatedAt).UTC()
	if deletedAt.Valid {
		d := time.Unix(0, deletedAt.Int64).UTC()
		m.DeletedAt = &d
	}
	return &m, nil
}

func sqliteStoreError(op string, err error) *ports.StoreError {
	cause := err.Error()

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			cause = "Unique constraint failed on the fields: (`id`)"
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			cause = "Check constraint failed"
		}
	}

	return &ports.StoreError{Op: op, Cause: cause, Err: err}
}
