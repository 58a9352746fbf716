package zalimport

import (
	"context"
	"fmt"

	"github.com/beevik/etree"

	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/platform/xmltree"
)

// JoinListImporter ingests the supplementary join list: it attaches
// identifying features to organisations created by a prior list import and
// enriches their data services with display names and interface versions.
// Organisations or data services missing from the store are logged and
// skipped rather than failing the run.
type JoinListImporter struct {
	deps Deps
}

// ProcessXML derives the import reference, rejects duplicates (guarded on
// identifying features, the rows this importer owns), and walks the
// organisation elements inside one transaction.
func (i *JoinListImporter) ProcessXML(ctx context.Context, tr *xmltree.Traverser) error {
	ref, err := importRef(tr)
	if err != nil {
		return err
	}

	exists, err := i.deps.Features.HasImportRef(ctx, ref)
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

func (i *JoinListImporter) walk(ctx context.Context, tr *xmltree.Traverser, ref string) error {
	elements, err := tr.All("Zorgaanbieders/Zorgaanbieder", nil)
	if err != nil {
		return err
	}

	total := len(elements)
	for progress, orgElement := range elements {
		i.deps.progress(progress, total)

		org, err := i.lookupOrganisation(ctx, tr, orgElement)
		if err != nil {
			return err
		}
		if org == nil {
			continue
		}

		if err := i.importFeatures(ctx, tr, orgElement, org, ref); err != nil {
			return err
		}
		if err := i.enrichDataServices(ctx, tr, orgElement, org); err != nil {
			return err
		}
	}
	return nil
}

func (i *JoinListImporter) lookupOrganisation(ctx context.Context, tr *xmltree.Traverser, el *etree.Element) (*organisation.Organisation, error) {
	name, err := tr.Text("Zorgaanbiedernaam", el)
	if err != nil {
		return nil, err
	}

	org, err := i.deps.Organisations.FindOneByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if org == nil {
		i.deps.Log.Warn().Str("name", name).Msg("no organisation found")
	}
	return org, nil
}

func (i *JoinListImporter) importFeatures(ctx context.Context, tr *xmltree.Traverser, el *etree.Element, org *organisation.Organisation, ref string) error {
	featureElements, err := tr.All("IdentificerendeKenmerken/IdentificerendKenmerk", el)
	if err != nil {
		return err
	}

	for _, featureElement := range featureElements {
		// The identifier kind is encoded as the name of the single child
		// element (e.g. <URA>00001234</URA>).
		typeElement, err := tr.FirstChild(featureElement)
		if err != nil {
			return err
		}

		featureType, err := organisation.ParseFeatureType(typeElement.Tag)
		if err != nil {
			return fmt.Errorf("tag %q: %w", typeElement.Tag, ErrUnknownFeatureType)
		}

		value := typeElement.Text()
		if value == "" {
			return fmt.Errorf("element %q: %w", typeElement.Tag, xmltree.ErrEmptyText)
		}

		feature := &organisation.IdentifyingFeature{
			OrganisationID: org.ID,
			Type:           featureType,
			Value:          value,
			ImportRef:      ref,
		}
		if err := i.deps.Features.Create(ctx, feature); err != nil {
			return err
		}
	}
	return nil
}

func (i *JoinListImporter) enrichDataServices(ctx context.Context, tr *xmltree.Traverser, el *etree.Element, org *organisation.Organisation) error {
	serviceElements, err := tr.All("Gegevensdiensten/Gegevensdienst", el)
	if err != nil {
		return err
	}

	for _, serviceElement := range serviceElements {
		externalID, err := tr.Text("GegevensdienstId", serviceElement)
		if err != nil {
			return err
		}
		name, err := tr.Text("Weergavenaam", serviceElement)
		if err != nil {
			return err
		}

		ds, err := i.deps.DataServices.FindOneByOrganisationAndExternalID(ctx, org.ID, externalID)
		if err != nil {
			return err
		}
		if ds == nil {
			i.deps.Log.Warn().
				Str("organisation_id", org.ID.String()).
				Str("external_id", externalID).
				Msg("no data service found for organisation")
			continue
		}

		versions, err := i.interfaceVersions(tr, serviceElement)
		if err != nil {
			return err
		}

		if err := i.deps.DataServices.Enrich(ctx, ds.ID, name, versions); err != nil {
			return err
		}
	}
	return nil
}

func (i *JoinListImporter) interfaceVersions(tr *xmltree.Traverser, el *etree.Element) ([]string, error) {
	versionElements, err := tr.All("Interfaceversies/Interfaceversie", el)
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(versionElements))
	for _, versionElement := range versionElements {
		child, err := tr.FirstChild(versionElement)
		if err != nil {
			return nil, err
		}
		if text := child.Text(); text != "" {
			versions = append(versions, text)
		}
	}
	return versions, nil
}
