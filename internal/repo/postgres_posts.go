package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"postqueue/internal/model"
)

type PostgresPostRepo struct {
	db *sql.DB
}

func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// InitSchema creates the scheduled_posts table and its status index if
// they do not exist yet. Safe to run on every start.
func (r *PostgresPostRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scheduled_posts (
			id            BIGSERIAL PRIMARY KEY,
			text          TEXT NOT NULL,
			scheduled_utc TIMESTAMPTZ NOT NULL,
			status        TEXT NOT NULL DEFAULT 'scheduled',
			posted_at     TIMESTAMPTZ,
			external_id   TEXT,
			error         TEXT
		)
	`)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS scheduled_posts_status_idx
		ON scheduled_posts (status, scheduled_utc)
	`)
	return err
}

func (r *PostgresPostRepo) Insert(ctx context.Context, text string, scheduledUTC time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO scheduled_posts (text, scheduled_utc, status)
		VALUES ($1, $2, 'scheduled')
		RETURNING id
	`, text, scheduledUTC.UTC()).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresPostRepo) GetByID(ctx context.Context, id int64) (model.ScheduledPost, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, text, scheduled_utc, status, posted_at, external_id, error
		FROM scheduled_posts
		WHERE id = $1
	`, id)

	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScheduledPost{}, model.ErrNotFound
	}
	return p, err
}

func (r *PostgresPostRepo) ListRecent(ctx context.Context, limit int) ([]model.ScheduledPost, error) {
	if limit <= 0 {
		limit = 200
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, scheduled_utc, status, posted_at, external_id, error
		FROM scheduled_posts
		ORDER BY scheduled_utc DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostgresPostRepo) ListPending(ctx context.Context) ([]model.ScheduledPost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, scheduled_utc, status, posted_at, external_id, error
		FROM scheduled_posts
		WHERE status = 'scheduled'
		ORDER BY scheduled_utc ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPosts(rows)
}

func (r *PostgresPostRepo) MarkPosted(ctx context.Context, id int64, externalID string, postedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = 'posted',
		    posted_at = $2,
		    external_id = $3
		WHERE id = $1 AND status = 'scheduled'
	`, id, postedAt.UTC(), externalID)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func (r *PostgresPostRepo) MarkFailed(ctx context.Context, id int64, reason string, postedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = 'failed',
		    posted_at = $2,
		    error = $3
		WHERE id = $1 AND status = 'scheduled'
	`, id, postedAt.UTC(), reason)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func (r *PostgresPostRepo) MarkCancelled(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_posts
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'scheduled'
	`, id)
	if err != nil {
		return false, err
	}
	return oneRow(res)
}

func oneRow(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.ScheduledPost, error) {
	var p model.ScheduledPost
	var status string
	var postedAt sql.NullTime
	var externalID sql.NullString
	var errMsg sql.NullString

	if err := row.Scan(
		&p.ID,
		&p.Text,
		&p.ScheduledUTC,
		&status,
		&postedAt,
		&externalID,
		&errMsg,
	); err != nil {
		return model.ScheduledPost{}, err
	}

	p.Status = model.Status(status)
	p.ScheduledUTC = p.ScheduledUTC.UTC()

	if postedAt.Valid {
		t := postedAt.Time.UTC()
		p.PostedAt = &t
	}
	if externalID.Valid {
		s := externalID.String
		p.ExternalID = &s
	}
	if errMsg.Valid {
		s := errMsg.String
		p.Error = &s
	}
	return p, nil
}

func collectPosts(rows *sql.Rows) ([]model.ScheduledPost, error) {
	var out []model.ScheduledPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
