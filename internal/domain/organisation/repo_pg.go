package organisation

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

// NewRepoPG returns the PostgreSQL-backed organisation repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const orgCols = `id, name, type, import_ref`

func scanOrganisation(row pgx.Row) (*Organisation, error) {
	var o Organisation
	err := row.Scan(&o.ID, &o.Name, &o.Type, &o.ImportRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) Create(ctx context.Context, o *Organisation) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO organisations (id, name, type, import_ref)
		VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, o.Type, o.ImportRef)
	return err
}

// The latest-generation scope is a correlated subquery inside the same
// statement, so a search never observes a generation switch mid-query.
func (r *repoPG) FindOneByName(ctx context.Context, name string) (*Organisation, error) {
	return scanOrganisation(r.conn(ctx).QueryRow(ctx, `
		SELECT `+orgCols+` FROM organisations
		WHERE name = $1
		  AND import_ref = (SELECT MAX(import_ref) FROM organisations)
		LIMIT 1`, name))
}

func (r *repoPG) FindOneByFeature(ctx context.Context, typ FeatureType, value string) (*Organisation, error) {
	return scanOrganisation(r.conn(ctx).QueryRow(ctx, `
		SELECT o.id, o.name, o.type, o.import_ref
		FROM organisations o
		JOIN identifying_features f ON f.organisation_id = o.id
		WHERE f.type = $1 AND f.value = $2
		  AND o.import_ref = (SELECT MAX(import_ref) FROM organisations)
		LIMIT 1`, typ, value))
}

func (r *repoPG) HasImportRef(ctx context.Context, importRef string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM organisations WHERE import_ref = $1)`,
		importRef).Scan(&exists)
	return exists, err
}

func (r *repoPG) ImportRefs(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT import_ref FROM organisations ORDER BY import_ref DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *repoPG) CountByImportRef(ctx context.Context, importRef string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM organisations WHERE import_ref = $1`,
		importRef).Scan(&count)
	return count, err
}

func (r *repoPG) DeleteByImportRefs(ctx context.Context, importRefs []string) error {
	if len(importRefs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM organisations WHERE import_ref = ANY($1)`, importRefs)
	return err
}

type featureRepoPG struct{ pool *pgxpool.Pool }

// NewFeatureRepoPG returns the PostgreSQL-backed identifying-feature
// repository.
func NewFeatureRepoPG(pool *pgxpool.Pool) FeatureRepository {
	return &featureRepoPG{pool: pool}
}

func (r *featureRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *featureRepoPG) Create(ctx context.Context, f *IdentifyingFeature) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO identifying_features (id, organisation_id, type, value, import_ref)
		VALUES ($1, $2, $3, $4, $5)`,
		f.ID, f.OrganisationID, f.Type, f.Value, f.ImportRef)
	return err
}

func (r *featureRepoPG) HasImportRef(ctx context.Context, importRef string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM identifying_features WHERE import_ref = $1)`,
		importRef).Scan(&exists)
	return exists, err
}
