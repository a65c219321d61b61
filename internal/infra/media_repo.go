package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const mediaColumns = `id::text, type, url, title, description, status, created_at, updated_at, deleted_at`

type PostgresMediaRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMediaRepo(pool *pgxpool.Pool) ports.MediaRepository {
	return &PostgresMediaRepo{pool: pool}
}

func (r *PostgresMediaRepo) FindUnique(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`

	m, err := scanMedia(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, pgStoreError("find media", err)
	}
	return m, nil
}

func (r *PostgresMediaRepo) FindMany(ctx context.Context, f ports.MediaFilter) ([]models.Media, error) {
	query, args := findManyQuery(f)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, pgStoreError("find many media", err)
	}
	defer rows.Close()

	out := []models.Media{}
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, pgStoreError("scan media", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, pgStoreError("find many media", err)
	}

	return out, nil
}

func (r *PostgresMediaRepo) Create(ctx context.Context, media *models.Media) (*models.Media, error) {
	query := `
		INSERT INTO media (id, type, url, title, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + mediaColumns

	m, err := scanMedia(r.pool.QueryRow(ctx, query,
		media.ID,
		typeArg(media.Type),
		media.URL,
		media.Title,
		media.Description,
		string(media.Status),
	))
	if err != nil {
		return nil, pgStoreError("insert media", err)
	}
	return m, nil
}

func (r *PostgresMediaRepo) Update(ctx context.Context, id string, p models.MediaPatch) (*models.Media, error) {
	query, args := updateQuery(id, p)

	m, err := scanMedia(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ports.StoreError{Op: "update media", Cause: ports.CauseRecordNotFound, Err: err}
		}
		return nil, pgStoreError("update media", err)
	}
	return m, nil
}

// findManyQuery builds the filtered, newest-first SELECT. LIMIT and OFFSET
// are only emitted when positive.
func findManyQuery(f ports.MediaFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != nil {
		where = append(where, "status = "+arg(string(*f.Status)))
	}
	if f.Search != nil {
		// strpos is a literal, case-sensitive substring match.
		p := arg(*f.Search)
		where = append(where, fmt.Sprintf("(strpos(title, %s) > 0 OR strpos(description, %s) > 0)", p, p))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + mediaColumns + ` FROM media`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	if f.Take > 0 {
		sb.WriteString(" LIMIT " + arg(f.Take))
	}
	if f.Skip > 0 {
		sb.WriteString(" OFFSET " + arg(f.Skip))
	}

	return sb.String(), args
}

func updateQuery(id string, p models.MediaPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
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
		set("deleted_at", *p.DeletedAt)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE media SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), mediaColumns)

	return query, args
}

func scanMedia(row pgx.Row) (*models.Media, error) {
	var (
		m         models.Media
		typ       *string
		status    string
		deletedAt *time.Time
	)

	if err := row.Scan(
		&m.ID,
		&typ,
		&m.URL,
		&m.Title,
		&m.Description,
		&status,
		&m.CreatedAt,
		&m.UpdatedAt,
		&deletedAt,
	); err != nil {
		return nil, err
	}

	if typ != nil {
		t := models.MediaType(*typ)
		m.Type = &t
	}
	m.Status = models.Status(status)
	m.DeletedAt = deletedAt
	return &m, nil
}

func typeArg(t *models.MediaType) *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

func pgStoreError(op string, err error) *ports.StoreError {
	cause := err.Error()

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		cause = pgErr.Message
		if pgErr.Detail != "" {
			cause += ": " + pgErr.Detail
		}
	}

	return &ports.StoreError{Op: op, Cause: cause, Err: err}
}
