package zalimport

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/platform/xmltree"
)

const listXML = `<?xml version="1.0" encoding="UTF-8"?>
<Zorgaanbiederslijst xmlns="xmlns://afsprakenstelsel.medmij.nl/zal/">
  <Tijdstempel>2021-05-04T17:53:51</Tijdstempel>
  <Volgnummer>9</Volgnummer>
  <Zorgaanbieders>
    <Zorgaanbieder>
      <Zorgaanbiedernaam>umcharderwijk@medmij</Zorgaanbiedernaam>
      <Aanbiedertype>ZA</Aanbiedertype>
      <Interfaceversies>
        <Interfaceversie>
          <Gegevensdiensten>
            <Gegevensdienst>
              <GegevensdienstId>4</GegevensdienstId>
              <AuthorizationEndpoint>
                <AuthorizationEndpointuri>https://medmij.za982.xisbridge.net/oauth/authorize</AuthorizationEndpointuri>
              </AuthorizationEndpoint>
              <TokenEndpoint>
                <TokenEndpointuri>https://medmij.xisbridge.net/oauth/token</TokenEndpointuri>
              </TokenEndpoint>
              <Systeemrollen>
                <Systeemrol>
                  <Systeemrolcode>MM-2.0-RSB-FHIR</Systeemrolcode>
                  <ResourceEndpoint>
                    <ResourceEndpointuri>https://medmij.za982.xisbridge.net/fhir</ResourceEndpointuri>
                  </ResourceEndpoint>
                </Systeemrol>
              </Systeemrollen>
            </Gegevensdienst>
          </Gegevensdiensten>
        </Interfaceversie>
      </Interfaceversies>
    </Zorgaanbieder>
    <Zorgaanbieder>
      <Zorgaanbiedernaam>radiologencentraalflevoland@medmij</Zorgaanbiedernaam>
      <Aanbiedertype>ZA</Aanbiedertype>
      <Interfaceversies>
        <Interfaceversie>
          <Gegevensdiensten>
            <Gegevensdienst>
              <GegevensdienstId>6</GegevensdienstId>
              <AuthorizationEndpoint>
                <AuthorizationEndpointuri>https://medmij.za983.xisbridge.net/oauth/authorize</AuthorizationEndpointuri>
              </AuthorizationEndpoint>
              <TokenEndpoint>
                <TokenEndpointuri>https://medmij.xisbridge.net/oauth/token</TokenEndpointuri>
              </TokenEndpoint>
              <Systeemrollen>
                <Systeemrol>
                  <Systeemrolcode>MM-2.0-RSB-FHIR</Systeemrolcode>
                  <ResourceEndpoint>
                    <ResourceEndpointuri>https://rcf-rso.nl/rcf/fhir-stu3</ResourceEndpointuri>
                  </ResourceEndpoint>
                </Systeemrol>
              </Systeemrollen>
            </Gegevensdienst>
          </Gegevensdiensten>
        </Interfaceversie>
      </Interfaceversies>
    </Zorgaanbieder>
  </Zorgaanbieders>
</Zorgaanbiederslijst>`

// 2021-05-04T17:53:51 UTC is unix 1620150831; serial 9 padded to six digits.
const listImportRef = "1620150831000009"

type listHarness struct {
	orgs      *fakeOrgRepo
	features  *fakeFeatureRepo
	services  *fakeDataServiceRepo
	endpoints *fakeEndpointRepo
	tx        *recordingTx
	signer    *fakeSigner
}

func newListHarness(signer *fakeSigner) *listHarness {
	return &listHarness{
		orgs:      &fakeOrgRepo{},
		features:  &fakeFeatureRepo{},
		services:  &fakeDataServiceRepo{},
		endpoints: &fakeEndpointRepo{},
		tx:        &recordingTx{},
		signer:    signer,
	}
}

func (h *listHarness) deps() Deps {
	deps := Deps{
		Organisations: h.orgs,
		Features:      h.features,
		DataServices:  h.services,
		Endpoints:     h.endpoints,
		Tx:            h.tx,
		Log:           zerolog.Nop(),
	}
	if h.signer != nil {
		deps.Signer = h.signer
	}
	return deps
}

func parseList(t *testing.T) *xmltree.Traverser {
	t.Helper()
	tr, err := xmltree.Parse([]byte(listXML))
	require.NoError(t, err)
	return tr
}

func TestImportRef(t *testing.T) {
	tr := parseList(t)
	ref, err := importRef(tr)
	require.NoError(t, err)
	assert.Equal(t, listImportRef, ref)
}

func TestImportRef_InvalidTimestamp(t *testing.T) {
	tr, err := xmltree.Parse([]byte(
		`<L><Tijdstempel>foobar</Tijdstempel><Volgnummer>1</Volgnummer></L>`))
	require.NoError(t, err)

	_, err = importRef(tr)
	assert.Error(t, err)
}

func TestListImporter_HappyPath(t *testing.T) {
	h := newListHarness(&fakeSigner{})
	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	require.NoError(t, importer.ProcessXML(context.Background(), parseList(t)))

	require.Len(t, h.orgs.orgs, 2)
	assert.Equal(t, "umcharderwijk@medmij", h.orgs.orgs[0].Name)
	assert.Equal(t, organisation.TypeZA, h.orgs.orgs[0].Type)
	assert.Equal(t, listImportRef, h.orgs.orgs[0].ImportRef)
	assert.Equal(t, "radiologencentraalflevoland@medmij", h.orgs.orgs[1].Name)

	require.Len(t, h.services.services, 2)
	assert.Equal(t, "4", h.services.services[0].ExternalID)
	assert.Equal(t, h.orgs.orgs[0].ID, h.services.services[0].OrganisationID)
	assert.Equal(t, "6", h.services.services[1].ExternalID)

	require.Len(t, h.services.roles, 2)
	assert.Equal(t, "MM-2.0-RSB-FHIR", h.services.roles[0].Code)

	// The token URL recurs across both organisations: one row, not two.
	require.Len(t, h.endpoints.endpoints, 5)
	for _, e := range h.endpoints.endpoints {
		require.NotNil(t, e.Signature)
		assert.Equal(t, "sig-"+e.URL, *e.Signature)
	}

	assert.True(t, h.tx.committed)
	assert.False(t, h.tx.rolledBack)
}

func TestListImporter_SharedEndpointIsResigned(t *testing.T) {
	h := newListHarness(&fakeSigner{})
	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	require.NoError(t, importer.ProcessXML(context.Background(), parseList(t)))

	// Token URL is referenced by both organisations; it must be signed on
	// both visits, not cached.
	signedTwice := 0
	for _, url := range h.signer.calls {
		if url == "https://medmij.xisbridge.net/oauth/token" {
			signedTwice++
		}
	}
	assert.Equal(t, 2, signedTwice)
}

func TestListImporter_DuplicateReference(t *testing.T) {
	h := newListHarness(&fakeSigner{})
	h.orgs.orgs = append(h.orgs.orgs, &organisation.Organisation{
		Name: "existing", ImportRef: listImportRef,
	})

	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	err = importer.ProcessXML(context.Background(), parseList(t))
	assert.ErrorIs(t, err, ErrDuplicateImportRef)
	// Rejected before the transaction even starts.
	assert.False(t, h.tx.began)
}

func TestListImporter_SigningFailureAbortsRun(t *testing.T) {
	h := newListHarness(&fakeSigner{failFor: map[string]bool{
		"https://medmij.xisbridge.net/oauth/token": true,
	}})

	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	err = importer.ProcessXML(context.Background(), parseList(t))
	require.Error(t, err)
	assert.True(t, h.tx.rolledBack)
	assert.False(t, h.tx.committed)
}

func TestListImporter_NoSignerStoresUnsigned(t *testing.T) {
	h := newListHarness(nil)
	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	require.NoError(t, importer.ProcessXML(context.Background(), parseList(t)))

	for _, e := range h.endpoints.endpoints {
		assert.Nil(t, e.Signature)
	}
}

func TestListImporter_NoSignerClearsExistingSignature(t *testing.T) {
	h := newListHarness(nil)
	old := "stale"
	require.NoError(t, h.endpoints.Create(context.Background(), &endpoint.Endpoint{
		URL:       "https://medmij.xisbridge.net/oauth/token",
		Signature: &old,
	}))

	importer, err := NewImporter(RootList, h.deps())
	require.NoError(t, err)

	require.NoError(t, importer.ProcessXML(context.Background(), parseList(t)))

	e, err := h.endpoints.FindOneByURL(context.Background(), "https://medmij.xisbridge.net/oauth/token")
	require.NoError(t, err)
	assert.Nil(t, e.Signature)
}

func TestNewImporter_UnknownRoot(t *testing.T) {
	_, err := NewImporter("Onbekend", Deps{})
	assert.ErrorIs(t, err, ErrUnknownImportType)
}
