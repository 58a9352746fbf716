package addressing

import (
	"context"

	"github.com/google/uuid"

	"github.com/zorgadres/register/internal/domain/dataservice"
	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/platform/signing"
)

// ZalAdapter serves search requests from the imported registry. Lookups are
// scoped to the latest import generation by the repositories themselves.
type ZalAdapter struct {
	orgs          organisation.Repository
	services      dataservice.Repository
	endpoints     endpoint.Repository
	signEndpoints bool
}

func NewZalAdapter(
	orgs organisation.Repository,
	services dataservice.Repository,
	endpoints endpoint.Repository,
	signEndpoints bool,
) *ZalAdapter {
	return &ZalAdapter{
		orgs:          orgs,
		services:      services,
		endpoints:     endpoints,
		signEndpoints: signEndpoints,
	}
}

func (a *ZalAdapter) SearchByMedmijName(ctx context.Context, name string) (*SearchEntry, error) {
	org, err := a.orgs.FindOneByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return a.buildEntry(ctx, IdentificationMedmij, name, org)
}

func (a *ZalAdapter) SearchByURA(ctx context.Context, ura string) (*SearchEntry, error) {
	return a.searchByFeature(ctx, organisation.FeatureURA, IdentificationURA, ura)
}

func (a *ZalAdapter) SearchByAGB(ctx context.Context, agb string) (*SearchEntry, error) {
	return a.searchByFeature(ctx, organisation.FeatureAGB, IdentificationAGB, agb)
}

func (a *ZalAdapter) SearchByHRN(ctx context.Context, hrn string) (*SearchEntry, error) {
	return a.searchByFeature(ctx, organisation.FeatureHRN, IdentificationHRN, hrn)
}

func (a *ZalAdapter) SearchByKVK(ctx context.Context, kvk string) (*SearchEntry, error) {
	return a.searchByFeature(ctx, organisation.FeatureKVK, IdentificationKVK, kvk)
}

func (a *ZalAdapter) searchByFeature(
	ctx context.Context,
	feature organisation.FeatureType,
	idType IdentificationType,
	value string,
) (*SearchEntry, error) {
	org, err := a.orgs.FindOneByFeature(ctx, feature, value)
	if err != nil {
		return nil, err
	}
	return a.buildEntry(ctx, idType, value, org)
}

func (a *ZalAdapter) buildEntry(
	ctx context.Context,
	idType IdentificationType,
	idValue string,
	org *organisation.Organisation,
) (*SearchEntry, error) {
	if org == nil {
		return nil, nil
	}

	services, err := a.services.FindAllByOrganisation(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]DataServiceEntry, 0, len(services))
	for _, ds := range services {
		entry, err := a.buildDataService(ctx, ds)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return &SearchEntry{
		MedmijID:         org.Name,
		OrganizationType: string(org.Type),
		IDType:           idType,
		IDValue:          idValue,
		DataServices:     entries,
	}, nil
}

func (a *ZalAdapter) buildDataService(ctx context.Context, ds *dataservice.DataService) (DataServiceEntry, error) {
	authURL, err := a.endpointURL(ctx, ds.AuthEndpointID)
	if err != nil {
		return DataServiceEntry{}, err
	}
	tokenURL, err := a.endpointURL(ctx, ds.TokenEndpointID)
	if err != nil {
		return DataServiceEntry{}, err
	}

	roles, err := a.services.RolesByDataService(ctx, ds.ID)
	if err != nil {
		return DataServiceEntry{}, err
	}
	roleEntries := make([]RoleEntry, 0, len(roles))
	for _, role := range roles {
		resourceURL, err := a.endpointURL(ctx, role.ResourceEndpointID)
		if err != nil {
			return DataServiceEntry{}, err
		}
		roleEntries = append(roleEntries, RoleEntry{
			Code:             role.Code,
			ResourceEndpoint: resourceURL,
		})
	}

	name := ""
	if ds.Name != nil {
		name = *ds.Name
	}
	versions := ds.InterfaceVersions
	if versions == nil {
		versions = []string{}
	}

	return DataServiceEntry{
		ID:                ds.ExternalID,
		Name:              name,
		InterfaceVersions: versions,
		AuthEndpoint:      authURL,
		TokenEndpoint:     tokenURL,
		Roles:             roleEntries,
	}, nil
}

// endpointURL resolves an endpoint reference to its URL, rebuilt with the
// stored signature as the last query parameter when signing is enabled.
func (a *ZalAdapter) endpointURL(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	e, err := a.endpoints.FindByID(ctx, *id)
	if err != nil {
		return "", err
	}
	if e == nil {
		return "", nil
	}
	if !a.signEndpoints || e.Signature == nil {
		return e.URL, nil
	}
	return signing.BuildSignedURL(e.URL, *e.Signature), nil
}
