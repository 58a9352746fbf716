package zalimport

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/zorgadres/register/internal/domain/dataservice"
	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/platform/xmltree"
)

// ListImporter ingests the full organisation list: organisations, their
// data services with auth/token endpoints, and the system roles with
// resource endpoints. Endpoints are deduplicated by URL within the run and
// re-signed every time they are revisited.
type ListImporter struct {
	deps Deps
}

// ProcessXML derives the import reference, rejects duplicates, and walks
// the organisation elements inside one transaction: any failure rolls the
// whole import back.
func (i *ListImporter) ProcessXML(ctx context.Context, tr *xmltree.Traverser) error {
	ref, err := importRef(tr)
	if err != nil {
		return err
	}

	exists, err := i.deps.Organisations.HasImportRef(ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("import reference %q: %w", ref, ErrDuplicateImportRef)
	}

	i.deps.Log.Info().
		Str("type", tr.RootName()).
		Str("reference", ref).
		Msg("start import")

	err = i.deps.Tx.RunInTx(ctx, func(ctx context.Context) error {
		return i.walk(ctx, tr, ref)
	})
	if err != nil {
		i.deps.Log.Error().Err(err).Str("reference", ref).Msg("failed to import data")
		return err
	}

	i.deps.Log.Info().Str("reference", ref).Msg("successfully imported data")
	return nil
}

func (i *ListImporter) walk(ctx context.Context, tr *xmltree.Traverser, ref string) error {
	elements, err := tr.All("Zorgaanbieders/Zorgaanbieder", nil)
	if err != nil {
		return err
	}

	total := len(elements)
	for progress, orgElement := range elements {
		i.deps.progress(progress, total)

		org, err := i.createOrganisation(ctx, tr, orgElement, ref)
		if err != nil {
			return err
		}

		serviceElements, err := tr.All("Interfaceversies/Interfaceversie/Gegevensdiensten/Gegevensdienst", orgElement)
		if err != nil {
			return err
		}

		for _, serviceElement := range serviceElements {
			ds, err := i.createDataService(ctx, tr, serviceElement, org.ID)
			if err != nil {
				return err
			}

			roleElements, err := tr.All("Systeemrollen/Systeemrol", serviceElement)
			if err != nil {
				return err
			}

			for _, roleElement := range roleElements {
				if err := i.createSystemRole(ctx, tr, roleElement, ds.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (i *ListImporter) createOrganisation(ctx context.Context, tr *xmltree.Traverser, el *etree.Element, ref string) (*organisation.Organisation, error) {
	name, err := tr.Text("Zorgaanbiedernaam", el)
	if err != nil {
		return nil, err
	}
	rawType, err := tr.Text("Aanbiedertype", el)
	if err != nil {
		return nil, err
	}
	orgType, err := organisation.ParseType(rawType)
	if err != nil {
		return nil, err
	}

	org := &organisation.Organisation{Name: name, Type: orgType, ImportRef: ref}
	if err := i.deps.Organisations.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (i *ListImporter) createDataService(ctx context.Context, tr *xmltree.Traverser, el *etree.Element, orgID uuid.UUID) (*dataservice.DataService, error) {
	externalID, err := tr.Text("GegevensdienstId", el)
	if err != nil {
		return nil, err
	}
	authURL, err := tr.Text("AuthorizationEndpoint/AuthorizationEndpointuri", el)
	if err != nil {
		return nil, err
	}
	tokenURL, err := tr.Text("TokenEndpoint/TokenEndpointuri", el)
	if err != nil {
		return nil, err
	}

	authEndpointID, err := i.findOrCreateEndpoint(ctx, authURL)
	if err != nil {
		return nil, err
	}
	tokenEndpointID, err := i.findOrCreateEndpoint(ctx, tokenURL)
	if err != nil {
		return nil, err
	}

	ds := &dataservice.DataService{
		OrganisationID:  orgID,
		ExternalID:      externalID,
		AuthEndpointID:  &authEndpointID,
		TokenEndpointID: &tokenEndpointID,
	}
	if err := i.deps.DataServices.Create(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (i *ListImporter) createSystemRole(ctx context.Context, tr *xmltree.Traverser, el *etree.Element, dataServiceID uuid.UUID) error {
	code, err := tr.Text("Systeemrolcode", el)
	if err != nil {
		return err
	}
	resourceURL, err := tr.Text("ResourceEndpoint/ResourceEndpointuri", el)
	if err != nil {
		return err
	}

	resourceEndpointID, err := i.findOrCreateEndpoint(ctx, resourceURL)
	if err != nil {
		return err
	}

	return i.deps.DataServices.CreateRole(ctx, &dataservice.SystemRole{
		DataServiceID:      dataServiceID,
		Code:               code,
		ResourceEndpointID: &resourceEndpointID,
	})
}

// findOrCreateEndpoint resolves an endpoint by exact URL. A new URL gets a
// freshly signed row; a known URL gets its signature overwritten and its
// id reused. With no signer configured the signature is stored as NULL in
// both cases, which deliberately unsigns previously signed endpoints.
func (i *ListImporter) findOrCreateEndpoint(ctx context.Context, url string) (uuid.UUID, error) {
	var signature *string
	if i.deps.Signer != nil {
		sig, err := i.deps.Signer.GenerateSignature(url)
		if err != nil {
			return uuid.Nil, err
		}
		signature = &sig
	}

	existing, err := i.deps.Endpoints.FindOneByURL(ctx, url)
	if err != nil {
		return uuid.Nil, err
	}

	if existing == nil {
		e := &endpoint.Endpoint{URL: url, Signature: signature}
		if err := i.deps.Endpoints.Create(ctx, e); err != nil {
			return uuid.Nil, err
		}
		return e.ID, nil
	}

	if err := i.deps.Endpoints.UpdateSignature(ctx, existing.ID, signature); err != nil {
		return uuid.Nil, err
	}
	return existing.ID, nil
}
