// Package endpoint holds the deduplicated endpoint URLs shared by
// auth/token/resource roles across data services, together with the batch
// job that renews their signatures.
package endpoint

import "github.com/google/uuid"

// Endpoint maps to the endpoints table. URLs are looked up by exact string
// match so the same URL recurring within one import run maps to a single
// row. Signature is the base64url ECDSA signature over the URL bytes, or
// nil when signing is disabled.
type Endpoint struct {
	ID        uuid.UUID `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	Signature *string   `db:"signature" json:"signature,omitempty"`
}
