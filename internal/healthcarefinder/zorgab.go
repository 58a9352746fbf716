package healthcarefinder

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Minimal STU3 wire model: only the fields the hydrator reads.

type fhirBundle struct {
	Total int               `json:"total"`
	Entry []fhirBundleEntry `json:"entry"`
}

type fhirBundleEntry struct {
	Resource fhirOrganization `json:"resource"`
}

type fhirOrganization struct {
	Name       string                `json:"name"`
	Identifier []fhirIdentifier      `json:"identifier"`
	Address    []fhirAddress         `json:"address"`
	Type       []fhirCodeableConcept `json:"type"`
}

type fhirIdentifier struct {
	System string `json:"system"`
	Value  string `json:"value"`
}

type fhirAddress struct {
	Text       string          `json:"text"`
	Line       []string        `json:"line"`
	City       string          `json:"city"`
	Country    string          `json:"country"`
	PostalCode string          `json:"postalCode"`
	Extension  []fhirExtension `json:"extension"`
}

type fhirExtension struct {
	URL          string          `json:"url"`
	ValueDecimal *float64        `json:"valueDecimal"`
	Extension    []fhirExtension `json:"extension"`
}

type fhirCodeableConcept struct {
	Coding []fhirCoding `json:"coding"`
}

type fhirCoding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

// ZorgABConfig configures the connection to the ZorgAB FHIR registry. The
// mTLS and proxy settings are optional.
type ZorgABConfig struct {
	BaseURL       string
	MTLSCertFile  string
	MTLSKeyFile   string
	MTLSChainFile string
	Proxy         string
}

// ZorgABAdapter queries the remote ZorgAB registry over FHIR STU3 and
// hydrates each hit with local addressing data.
type ZorgABAdapter struct {
	baseURL  string
	client   *http.Client
	hydrator *Hydrator
	log      zerolog.Logger
}

func NewZorgABAdapter(cfg ZorgABConfig, hydrator *Hydrator, log zerolog.Logger) (*ZorgABAdapter, error) {
	if !strings.HasPrefix(cfg.BaseURL, "http") || strings.HasSuffix(cfg.BaseURL, "/") {
		return nil, fmt.Errorf("zorgab base URL must start with http(s) and not end with a slash")
	}

	transport := &http.Transport{}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.MTLSChainFile != "" {
		chain, err := os.ReadFile(cfg.MTLSChainFile)
		if err != nil {
			return nil, fmt.Errorf("read mtls chain: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(chain) {
			return nil, fmt.Errorf("mtls chain %s holds no certificates", cfg.MTLSChainFile)
		}
		tlsConfig.RootCAs = pool
	}
	if cfg.MTLSCertFile != "" && cfg.MTLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.MTLSCertFile, cfg.MTLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("load mtls keypair: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	transport.TLSClientConfig = tlsConfig

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &ZorgABAdapter{
		baseURL:  cfg.BaseURL,
		client:   &http.Client{Transport: transport, Timeout: 30 * time.Second},
		hydrator: hydrator,
		log:      log,
	}, nil
}

func (a *ZorgABAdapter) SearchOrganizations(ctx context.Context, search SearchRequest) (*SearchResponse, error) {
	params, err := buildFHIRSearch(search)
	if err != nil {
		a.log.Error().Err(err).Msg("cannot build FHIR search")
		return nil, fmt.Errorf("%w: %v", ErrBadSearchParams, err)
	}

	searchURL := a.baseURL + "/fhir/Organization?" + params
	a.log.Info().Str("url", searchURL).Msg("searching ZorgAB")

	bundle, err := a.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	orgs := []Organization{}
	if bundle.Total > 0 {
		for _, entry := range bundle.Entry {
			org, err := a.hydrator.HydrateOrganization(ctx, entry.Resource)
			if err != nil {
				a.log.Error().Err(err).Str("organization", entry.Resource.Name).
					Msg("failed to hydrate organisation")
				return nil, fmt.Errorf("%w: %v", ErrHydration, err)
			}
			orgs = append(orgs, org)
		}
	}

	return &SearchResponse{Organizations: orgs}, nil
}

// VerifyConnection performs a probe search against the registry.
func (a *ZorgABAdapter) VerifyConnection(ctx context.Context) bool {
	probeURL := a.baseURL + "/fhir/Organization?name=huisarts&address-city=Amsterdam"
	if _, err := a.get(ctx, probeURL); err != nil {
		a.log.Error().Err(err).Msg("ZorgAB connection check failed")
		return false
	}
	return true
}

func (a *ZorgABAdapter) get(ctx context.Context, rawURL string) (*fhirBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/fhir+json")
	req.Header.Set("Content-Type", "application/fhir+json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Error().Err(err).Msg("ZorgAB request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.log.Error().Int("status", resp.StatusCode).Str("url", rawURL).
			Msg("unexpected status from ZorgAB")
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var bundle fhirBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: decode bundle: %v", ErrUpstream, err)
	}
	return &bundle, nil
}

// buildFHIRSearch requires both name and city; single quotes are doubled the
// way the registry expects.
func buildFHIRSearch(search SearchRequest) (string, error) {
	search = search.Normalized()
	if search.Name == "" || search.City == "" {
		return "", fmt.Errorf("both name and city are required")
	}

	params := url.Values{}
	params.Set("name", strings.ReplaceAll(search.Name, "'", "''"))
	params.Set("address-city", strings.ReplaceAll(search.City, "'", "''"))
	return params.Encode(), nil
}
