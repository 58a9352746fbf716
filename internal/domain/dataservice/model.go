// Package dataservice holds the data-service bundles an organisation
// exposes and their system roles.
package dataservice

import "github.com/google/uuid"

// DataService maps to the data_services table. Created by the list
// importer with endpoint references only; the join-list importer later
// enriches Name and InterfaceVersions by matching on (organisation_id,
// external_id). Endpoint references are nullable because endpoint rows
// null them out on delete.
type DataService struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	OrganisationID    uuid.UUID  `db:"organisation_id" json:"organisation_id"`
	ExternalID        string     `db:"external_id" json:"external_id"`
	Name              *string    `db:"name" json:"name,omitempty"`
	InterfaceVersions []string   `db:"interface_versions" json:"interface_versions,omitempty"`
	AuthEndpointID    *uuid.UUID `db:"auth_endpoint_id" json:"auth_endpoint_id,omitempty"`
	TokenEndpointID   *uuid.UUID `db:"token_endpoint_id" json:"token_endpoint_id,omitempty"`
}

// SystemRole maps to the system_roles table: one capability code with its
// resource endpoint under a data service.
type SystemRole struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	DataServiceID      uuid.UUID  `db:"data_service_id" json:"data_service_id"`
	Code               string     `db:"code" json:"code"`
	ResourceEndpointID *uuid.UUID `db:"resource_endpoint_id" json:"resource_endpoint_id,omitempty"`
}
