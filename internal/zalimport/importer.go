// Package zalimport ingests ZAL registry XML files into the relational
// model: the organisation list ("Zorgaanbiederslijst") and the join list
// ("Zorgaanbiederskoppellijst") correlating organisations with identifying
// features and data-service names.
//
// Imports are offline batch jobs: each run is a single transaction, and no
// two imports may run concurrently against the same store: the duplicate
// import-reference check is not guarded by a database lock.
package zalimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zorgadres/register/internal/domain/dataservice"
	"github.com/zorgadres/register/internal/domain/endpoint"
	"github.com/zorgadres/register/internal/domain/organisation"
	"github.com/zorgadres/register/internal/platform/db"
	"github.com/zorgadres/register/internal/platform/xmltree"
)

// Root element names distinguishing the two registry file kinds.
const (
	RootList     = "Zorgaanbiederslijst"
	RootJoinList = "Zorgaanbiederskoppellijst"
)

var (
	// ErrDuplicateImportRef signals that this registry generation was
	// already imported; retrying the same file is a safe no-op failure.
	ErrDuplicateImportRef = errors.New("import reference already exists")
	// ErrUnknownImportType signals an unrecognised root element.
	ErrUnknownImportType = errors.New("unknown import type")
	// ErrUnknownFeatureType signals an identifying-feature tag that maps to
	// no known identifier kind.
	ErrUnknownFeatureType = errors.New("unknown identifying feature type")
)

// SignatureGenerator produces a signature over an endpoint URL.
type SignatureGenerator interface {
	GenerateSignature(endpoint string) (string, error)
}

// ProgressFunc reports forward progress (processed count out of total
// organisation elements) for operator visibility. It must not affect
// transactional semantics.
type ProgressFunc func(progress, total int)

// Importer processes one parsed registry file.
type Importer interface {
	ProcessXML(ctx context.Context, tr *xmltree.Traverser) error
}

// Deps bundles the collaborators shared by both importer variants.
type Deps struct {
	Organisations organisation.Repository
	Features      organisation.FeatureRepository
	DataServices  dataservice.Repository
	Endpoints     endpoint.Repository
	Tx            db.TxRunner
	// Signer is optional; when nil the list importer stores endpoints
	// unsigned (and clears signatures on endpoints it revisits).
	Signer   SignatureGenerator
	Log      zerolog.Logger
	Progress ProgressFunc
}

func (d Deps) progress(progress, total int) {
	if d.Progress != nil {
		d.Progress(progress, total)
	}
}

// NewImporter selects the importer matching the file's root element name.
func NewImporter(rootName string, deps Deps) (Importer, error) {
	switch rootName {
	case RootList:
		return &ListImporter{deps: deps}, nil
	case RootJoinList:
		return &JoinListImporter{deps: deps}, nil
	default:
		return nil, fmt.Errorf("root element %q: %w", rootName, ErrUnknownImportType)
	}
}
