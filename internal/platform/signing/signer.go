// Package signing signs data-service endpoint URLs so that a downstream
// consumer holding the public key can verify each endpoint was vouched for
// by this register.
package signing

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// SignatureParam is the query parameter carrying an endpoint signature.
const SignatureParam = "signature"

// Signer produces ECDSA (P-256, SHA-256) signatures over endpoint URLs.
// The private key is loaded lazily on first use and exactly once per
// process; a failed load is sticky and surfaces on every subsequent call.
type Signer struct {
	keyPath string

	once sync.Once
	key  *ecdsa.PrivateKey
	err  error
}

// NewSigner returns a Signer reading its private key from keyPath on first
// use.
func NewSigner(keyPath string) *Signer {
	return &Signer{keyPath: keyPath}
}

func (s *Signer) ensureKeyLoaded() error {
	s.once.Do(func() {
		s.key, s.err = LoadECPrivateKey(s.keyPath)
	})
	return s.err
}

// GenerateSignature signs the raw URL bytes and returns the base64url
// encoded ASN.1 signature. ECDSA is randomized: two signatures over the
// same URL are valid but not byte-identical.
func (s *Signer) GenerateSignature(endpoint string) (string, error) {
	if err := s.ensureKeyLoaded(); err != nil {
		return "", err
	}

	digest := sha256.Sum256([]byte(endpoint))
	sig, err := ecdsa.SignASN1(rand.Reader, s.key, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign endpoint: %w", err)
	}

	return base64.URLEncoding.EncodeToString(sig), nil
}

// SignEndpoint appends a fresh signature parameter to the URL, using "?"
// when the URL has no query string and "&" otherwise.
func (s *Signer) SignEndpoint(endpoint string) (string, error) {
	sig, err := s.GenerateSignature(endpoint)
	if err != nil {
		return "", err
	}

	delimiter := "?"
	if strings.Contains(endpoint, "?") {
		delimiter = "&"
	}
	return endpoint + delimiter + SignatureParam + "=" + sig, nil
}
