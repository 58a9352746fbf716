package endpoint

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zorgadres/register/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns the PostgreSQL-backed endpoint repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func scanEndpoint(row pgx.Row) (*Endpoint, error) {
	var e Endpoint
	err := row.Scan(&e.ID, &e.URL, &e.Signature)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Endpoint) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO endpoints (id, url, signature) VALUES ($1, $2, $3)`,
		e.ID, e.URL, e.Signature)
	return err
}

func (r *repoPG) FindOneByURL(ctx context.Context, url string) (*Endpoint, error) {
	return scanEndpoint(r.conn(ctx).QueryRow(ctx, `
		SELECT id, url, signature FROM endpoints WHERE url = $1 LIMIT 1`, url))
}

func (r *repoPG) FindByID(ctx context.Context, id uuid.UUID) (*Endpoint, error) {
	return scanEndpoint(r.conn(ctx).QueryRow(ctx, `
		SELECT id, url, signature FROM endpoints WHERE id = $1`, id))
}

func (r *repoPG) FindAll(ctx context.Context) ([]*Endpoint, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, url, signature FROM endpoints`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateSignature(ctx context.Context, id uuid.UUID, signature *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE endpoints SET signature = $2 WHERE id = $1`, id, signature)
	return err
}
