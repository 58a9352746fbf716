package zalimport

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/zorgadres/register/internal/domain/dataservice"
	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
)

// In-memory repositories backing the importer tests. Rollback is not
// simulated; tests assert on the transaction recorder instead.

type fakeOrgRepo struct {
	orgs []*organisation.Organisation
}

func (r *fakeOrgRepo) Create(ctx context.Context, o *organisation.Organisation) error {
	o.ID = uuid.New()
	r.orgs = append(r.orgs, o)
	return nil
}

func (r *fakeOrgRepo) FindOneByName(ctx context.Context, name string) (*organisation.Organisation, error) {
	latest := r.latestRef()
	for _, o := range r.orgs {
		if o.Name == name && o.ImportRef == latest {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrgRepo) FindOneByFeature(ctx context.Context, typ organisation.FeatureType, value string) (*organisation.Organisation, error) {
	return nil, nil
}

func (r *fakeOrgRepo) HasImportRef(ctx context.Context, importRef string) (bool, error) {
	for _, o := range r.orgs {
		if o.ImportRef == importRef {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrgRepo) ImportRefs(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var refs []string
	for _, o := range r.orgs {
		if !seen[o.ImportRef] {
			seen[o.ImportRef] = true
			refs = append(refs, o.ImportRef)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(refs)))
	return refs, nil
}

func (r *fakeOrgRepo) CountByImportRef(ctx context.Context, importRef string) (int, error) {
	count := 0
	for _, o := range r.orgs {
		if o.ImportRef == importRef {
			count++
		}
	}
	return count, nil
}

func (r *fakeOrgRepo) DeleteByImportRefs(ctx context.Context, importRefs []string) error {
	expired := map[string]bool{}
	for _, ref := range importRefs {
		expired[ref] = true
	}
	var kept []*organisation.Organisation
	for _, o := range r.orgs {
		if !expired[o.ImportRef] {
			kept = append(kept, o)
		}
	}
	r.orgs = kept
	return nil
}

func (r *fakeOrgRepo) latestRef() string {
	latest := ""
	for _, o := range r.orgs {
		if o.ImportRef > latest {
			latest = o.ImportRef
		}
	}
	return latest
}

type fakeFeatureRepo struct {
	features []*organisation.IdentifyingFeature
}

func (r *fakeFeatureRepo) Create(ctx context.Context, f *organisation.IdentifyingFeature) error {
	f.ID = uuid.New()
	r.features = append(r.features, f)
	return nil
}

func (r *fakeFeatureRepo) HasImportRef(ctx context.Context, importRef string) (bool, error) {
	for _, f := range r.features {
		if f.ImportRef == importRef {
			return true, nil
		}
	}
	return false, nil
}

type fakeDataServiceRepo struct {
	services []*dataservice.DataService
	roles    []*dataservice.SystemRole
}

func (r *fakeDataServiceRepo) Create(ctx context.Context, ds *dataservice.DataService) error {
	ds.ID = uuid.New()
	r.services = append(r.services, ds)
	return nil
}

func (r *fakeDataServiceRepo) FindOneByOrganisationAndExternalID(ctx context.Context, organisationID uuid.UUID, externalID string) (*dataservice.DataService, error) {
	for _, ds := range r.services {
		if ds.OrganisationID == organisationID && ds.ExternalID == externalID {
			return ds, nil
		}
	}
	return nil, nil
}

func (r *fakeDataServiceRepo) FindAllByOrganisation(ctx context.Context, organisationID uuid.UUID) ([]*dataservice.DataService, error) {
	var items []*dataservice.DataService
	for _, ds := range r.services {
		if ds.OrganisationID == organisationID {
			items = append(items, ds)
		}
	}
	return items, nil
}

func (r *fakeDataServiceRepo) Enrich(ctx context.Context, id uuid.UUID, name string, interfaceVersions []string) error {
	for _, ds := range r.services {
		if ds.ID == id {
			ds.Name = &name
			ds.InterfaceVersions = interfaceVersions
			return nil
		}
	}
	return errors.New("data service not found")
}

func (r *fakeDataServiceRepo) CreateRole(ctx context.Context, role *dataservice.SystemRole) error {
	role.ID = uuid.New()
	r.roles = append(r.roles, role)
	return nil
}

func (r *fakeDataServiceRepo) RolesByDataService(ctx context.Context, dataServiceID uuid.UUID) ([]*dataservice.SystemRole, error) {
	var roles []*dataservice.SystemRole
	for _, role := range r.roles {
		if role.DataServiceID == dataServiceID {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

type fakeEndpointRepo struct {
	endpoints []*endpoint.Endpoint
}

func (r *fakeEndpointRepo) Create(ctx context.Context, e *endpoint.Endpoint) error {
	e.ID = uuid.New()
	r.endpoints = append(r.endpoints, e)
	return nil
}

func (r *fakeEndpointRepo) FindOneByURL(ctx context.Context, url string) (*endpoint.Endpoint, error) {
	for _, e := range r.endpoints {
		if e.URL == url {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEndpointRepo) FindByID(ctx context.Context, id uuid.UUID) (*endpoint.Endpoint, error) {
	for _, e := range r.endpoints {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeEndpointRepo) FindAll(ctx context.Context) ([]*endpoint.Endpoint, error) {
	return r.endpoints, nil
}

func (r *fakeEndpointRepo) UpdateSignature(ctx context.Context, id uuid.UUID, signature *string) error {
	for _, e := range r.endpoints {
		if e.ID == id {
			e.Signature = signature
			return nil
		}
	}
	return errors.New("endpoint not found")
}

// recordingTx runs the function directly and records the outcome of the
// transaction boundary.
type recordingTx struct {
	began      bool
	committed  bool
	rolledBack bool
}

func (t *recordingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.began = true
	if err := fn(ctx); err != nil {
		t.rolledBack = true
		return err
	}
	t.committed = true
	return nil
}

type fakeSigner struct {
	failFor map[string]bool
	calls   []string
}

func (s *fakeSigner) GenerateSignature(endpoint string) (string, error) {
	s.calls = append(s.calls, endpoint)
	if s.failFor[endpoint] {
		return "", errors.New("signing failed")
	}
	return "sig-" + endpoint, nil
}
