package dataservice

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to data services and their system roles.
type Repository interface {
	Create(ctx context.Context, ds *DataService) error
	// FindOneByOrganisationAndExternalID returns (nil, nil) when absent.
	FindOneByOrganisationAndExternalID(ctx context.Context, organisationID uuid.UUID, externalID string) (*DataService, error)
	FindAllByOrganisation(ctx context.Context, organisationID uuid.UUID) ([]*DataService, error)
	// Enrich overwrites a data service's display name and interface
	// versions (join-list import).
	Enrich(ctx context.Context, id uuid.UUID, name string, interfaceVersions []string) error

	CreateRole(ctx context.Context, role *SystemRole) error
	RolesByDataService(ctx context.Context, dataServiceID uuid.UUID) ([]*SystemRole, error)
}
