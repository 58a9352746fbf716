package dataservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// NewRepoPG returns the PostgreSQL-backed data-service repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const dsCols = `id, organisation_id, external_id, name, interface_versions, auth_endpoint_id, token_endpoint_id`

func scanDataService(row pgx.Row) (*DataService, error) {
	var ds DataService
	var versions []byte
	err := row.Scan(&ds.ID, &ds.OrganisationID, &ds.ExternalID, &ds.Name,
		&versions, &ds.AuthEndpointID, &ds.TokenEndpointID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(versions) > 0 {
		if err := json.Unmarshal(versions, &ds.InterfaceVersions); err != nil {
			return nil, fmt.Errorf("decode interface versions: %w", err)
		}
	}
	return &ds, nil
}

func encodeVersions(versions []string) ([]byte, error) {
	if versions == nil {
		return nil, nil
	}
	return json.Marshal(versions)
}

func (r *repoPG) Create(ctx context.Context, ds *DataService) error {
	ds.ID = uuid.New()
	versions, err := encodeVersions(ds.InterfaceVersions)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO data_services (id, organisation_id, external_id, name, interface_versions, auth_endpoint_id, token_endpoint_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ds.ID, ds.OrganisationID, ds.ExternalID, ds.Name, versions, ds.AuthEndpointID, ds.TokenEndpointID)
	return err
}

func (r *repoPG) FindOneByOrganisationAndExternalID(ctx context.Context, organisationID uuid.UUID, externalID string) (*DataService, error) {
	return scanDataService(r.conn(ctx).QueryRow(ctx, `
		SELECT `+dsCols+` FROM data_services
		WHERE organisation_id = $1 AND external_id = $2
		LIMIT 1`, organisationID, externalID))
}

func (r *repoPG) FindAllByOrganisation(ctx context.Context, organisationID uuid.UUID) ([]*DataService, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+dsCols+` FROM data_services WHERE organisation_id = $1`, organisationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DataService
	for rows.Next() {
		ds, err := scanDataService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ds)
	}
	return items, rows.Err()
}

func (r *repoPG) Enrich(ctx context.Context, id uuid.UUID, name string, interfaceVersions []string) error {
	versions, err := encodeVersions(interfaceVersions)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE data_services SET name = $2, interface_versions = $3 WHERE id = $1`,
		id, name, versions)
	return err
}

func (r *repoPG) CreateRole(ctx context.Context, role *SystemRole) error {
	role.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO system_roles (id, data_service_id, code, resource_endpoint_id)
		VALUES ($1, $2, $3, $4)`,
		role.ID, role.DataServiceID, role.Code, role.ResourceEndpointID)
	return err
}

func (r *repoPG) RolesByDataService(ctx context.Context, dataServiceID uuid.UUID) ([]*SystemRole, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, data_service_id, code, resource_endpoint_id
		FROM system_roles WHERE data_service_id = $1`, dataServiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*SystemRole
	for rows.Next() {
		var role SystemRole
		if err := rows.Scan(&role.ID, &role.DataServiceID, &role.Code, &role.ResourceEndpointID); err != nil {
			return nil, err
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}
