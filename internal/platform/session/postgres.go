package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresRepository stores sessions in the web_sessions table created by
// the db package migrations.
type PostgresRepository struct {
	db queryable
}

// NewPostgresRepository accepts a *pgxpool.Pool or anything with the same
// query methods.
func NewPostgresRepository(db queryable) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context, id string) (*Bundle, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT bundle FROM web_sessions WHERE id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return decodeBundle(data), nil
}

func (r *PostgresRepository) Save(ctx context.Context, id string, b *Bundle) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := encodeBundle(b)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO web_sessions (id, bundle, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET bundle = EXCLUDED.bundle, updated_at = NOW()`,
		id, data)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Clear(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO web_sessions (id, last_activity, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET last_activity = EXCLUDED.last_activity, updated_at = NOW()`,
		id, at)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) LastActivity(ctx context.Context, id string) (time.Time, bool, error) {
	var at *time.Time
	err := r.db.QueryRow(ctx, `SELECT last_activity FROM web_sessions WHERE id = $1`, id).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read activity: %w", err)
	}
	if at == nil {
		return time.Time{}, false, nil
	}
	return *at, true, nil
}

func (r *PostgresRepository) IDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM web_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
