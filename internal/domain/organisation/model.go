// Package organisation holds the Organisation aggregate and its identifying
// features, both keyed to the import generation that produced them.
package organisation

import (
	"fmt"

	"github.com/google/uuid"
)

// Type classifies an organisation in the ZAL registry.
type Type string

const (
	// TypeZA is a regular healthcare provider ("zorgaanbieder").
	TypeZA Type = "ZA"
	// TypeBAZB is a provider acting on behalf of another
	// ("bemiddelende aanbieder zonder behandelrelatie").
	TypeBAZB Type = "BAZB"
)

// ParseType maps a registry value onto a Type.
func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypeZA, TypeBAZB:
		return Type(value), nil
	default:
		return "", fmt.Errorf("unknown organisation type %q", value)
	}
}

// FeatureType is the kind of identifier an identifying feature carries.
type FeatureType string

const (
	FeatureAGB FeatureType = "AGB"
	FeatureURA FeatureType = "URA"
	FeatureOIN FeatureType = "OIN"
	FeatureHRN FeatureType = "HRN"
	FeatureKVK FeatureType = "KVK"
)

// ParseFeatureType maps a registry tag name onto a FeatureType.
func ParseFeatureType(value string) (FeatureType, error) {
	switch FeatureType(value) {
	case FeatureAGB, FeatureURA, FeatureOIN, FeatureHRN, FeatureKVK:
		return FeatureType(value), nil
	default:
		return "", fmt.Errorf("unknown identifying feature type %q", value)
	}
}

// Organisation maps to the organisations table. Rows are created by the
// list importer and removed only by the expired-import cleanup; the
// import_ref string orders generations (unix timestamp followed by a
// zero-padded serial, so lexicographic order is chronological order).
type Organisation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Type      Type      `db:"type" json:"type"`
	ImportRef string    `db:"import_ref" json:"import_ref"`
}

// IdentifyingFeature maps to the identifying_features table. Created only
// by the join-list importer.
type IdentifyingFeature struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	OrganisationID uuid.UUID   `db:"organisation_id" json:"organisation_id"`
	Type           FeatureType `db:"type" json:"type"`
	Value          string      `db:"value" json:"value"`
	ImportRef      string      `db:"import_ref" json:"import_ref"`
}
