package healthcarefinder

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/addressing"
)

// FHIR naming systems recognised in ZorgAB organisation identifiers.
const (
	systemAGB    = "http://fhir.nl/fhir/NamingSystem/agb-z"
	systemURA    = "http://fhir.nl/fhir/NamingSystem/ura"
	systemMedmij = "http://www.medmij.nl/id/medmijnaam"
	systemKVK    = "http://www.vzvz.nl/fhir/NamingSystem/kvk"

	geolocationDefinition = "hl7.org/fhir/StructureDefinition/geolocation"
)

// Hydrator enriches a raw registry organisation with the data services the
// local directory knows for its identifier.
type Hydrator struct {
	addressing *addressing.Service
	log        zerolog.Logger
}

func NewHydrator(svc *addressing.Service, log zerolog.Logger) *Hydrator {
	return &Hydrator{addressing: svc, log: log}
}

func (h *Hydrator) HydrateOrganization(ctx context.Context, src fhirOrganization) (Organization, error) {
	entry, identification, err := h.resolveIdentifier(ctx, src)
	if err != nil {
		return Organization{}, err
	}

	org := Organization{
		DisplayName: src.Name,
		Identifier:  identification,
		Addresses:   []Address{},
		Types:       []CType{},
	}
	if entry != nil {
		org.MedmijID = &entry.MedmijID
		org.DataServices = entry.DataServices
	} else {
		org.DataServices = []addressing.DataServiceEntry{}
	}

	hydrateTypes(src, &org)
	hydrateAddresses(src, &org)

	return org, nil
}

// resolveIdentifier picks the first recognised identifier, looks it up in the
// local directory and renders the "type:value" identification string. An
// organisation without any identifier gets a random placeholder.
func (h *Hydrator) resolveIdentifier(ctx context.Context, src fhirOrganization) (*addressing.SearchEntry, string, error) {
	if len(src.Identifier) == 0 {
		placeholder := uuid.NewString()
		h.log.Warn().
			Str("organization", src.Name).
			Str("placeholder", placeholder).
			Msg("organisation has no identifier, generated placeholder")
		return nil, placeholder, nil
	}

	var (
		entry   *addressing.SearchEntry
		idType  string
		idValue string
		err     error
	)

	for _, identifier := range src.Identifier {
		if identifier.System == "" || identifier.Value == "" {
			continue
		}
		idValue = identifier.Value

		switch identifier.System {
		case systemAGB:
			idType = "agb-z"
			entry, err = h.addressing.SearchByAGB(ctx, idValue)
		case systemURA:
			idType = "ura"
			entry, err = h.addressing.SearchByURA(ctx, idValue)
		case systemMedmij:
			idType = "medmij"
			entry, err = h.addressing.SearchByMedmijName(ctx, idValue)
		case systemKVK:
			idType = "kvk"
			entry, err = h.addressing.SearchByKVK(ctx, idValue)
		}
		if err != nil {
			return nil, "", err
		}
	}

	return entry, Identification{Type: idType, Value: idValue}.String(), nil
}

func hydrateTypes(src fhirOrganization, org *Organization) {
	for _, concept := range src.Type {
		if len(concept.Coding) == 0 {
			continue
		}
		coding := concept.Coding[0]
		display := coding.Display
		if display == "" {
			display = coding.Code
		}
		org.Types = append(org.Types, CType{
			Code:        coding.Code,
			DisplayName: display,
			Type:        coding.System,
		})
	}
}

func hydrateAddresses(src fhirOrganization, org *Organization) {
	for _, addr := range src.Address {
		var geo *GeoLocation
		if ext := findExtension(addr.Extension, geolocationDefinition); ext != nil {
			lat := findExtension(ext.Extension, "latitude")
			lon := findExtension(ext.Extension, "longitude")
			if lat != nil && lon != nil && lat.ValueDecimal != nil && lon.ValueDecimal != nil {
				geo = &GeoLocation{Latitude: *lat.ValueDecimal, Longitude: *lon.ValueDecimal}
			}
		}

		org.Addresses = append(org.Addresses, Address{
			Active:      true,
			Address:     addr.Text,
			Lines:       addr.Line,
			City:        addr.City,
			Country:     addr.Country,
			Geolocation: geo,
			PostalCode:  addr.PostalCode,
		})
	}
}

// findExtension matches extension URLs with the scheme stripped, since the
// registry publishes them inconsistently over http and https.
func findExtension(extensions []fhirExtension, url string) *fhirExtension {
	for i := range extensions {
		stripped := strings.TrimPrefix(strings.TrimPrefix(extensions[i].URL, "https://"), "http://")
		if stripped == url {
			return &extensions[i]
		}
	}
	return nil
}
