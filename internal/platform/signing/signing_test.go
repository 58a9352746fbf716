package signing

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestKey(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "key.pem")
	pemData := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(path, pemData, 0o600))

	return path, key
}

func TestGenerateSignature_Verifies(t *testing.T) {
	path, key := writeTestKey(t)
	signer := NewSigner(path)

	const url = "https://medmij.example.com/fhir"
	encoded, err := signer.GenerateSignature(url)
	require.NoError(t, err)

	sig, err := base64.URLEncoding.DecodeString(encoded)
	require.NoError(t, err)

	digest := sha256.Sum256([]byte(url))
	assert.True(t, ecdsa.VerifyASN1(&key.PublicKey, digest[:], sig))
}

func TestSignEndpoint_Delimiter(t *testing.T) {
	path, _ := writeTestKey(t)
	signer := NewSigner(path)

	signed, err := signer.SignEndpoint("https://example.com/fhir")
	require.NoError(t, err)
	assert.Contains(t, signed, "https://example.com/fhir?"+SignatureParam+"=")

	signed, err = signer.SignEndpoint("https://example.com/fhir?foo=bar")
	require.NoError(t, err)
	assert.Contains(t, signed, "https://example.com/fhir?foo=bar&"+SignatureParam+"=")
}

func TestSigner_InvalidKeyIsSticky(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a pem"), 0o600))

	signer := NewSigner(path)

	_, err := signer.GenerateSignature("https://example.com")
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	// Loading happens once; the failure repeats without retrying.
	_, err = signer.GenerateSignature("https://example.com")
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestParseECPrivateKey_RejectsNonECKey(t *testing.T) {
	// A PKCS#8 block holding something other than an EC key must fail.
	// Ed25519 keys marshal through PKCS#8.
	_, err := ParseECPrivateKey(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}}))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestBuildSignedURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "no query string",
			url:  "http://example.com",
			want: "http://example.com?" + SignatureParam + "=NEW",
		},
		{
			name: "existing params preserved",
			url:  "http://example.com?foo=bar",
			want: "http://example.com?foo=bar&" + SignatureParam + "=NEW",
		},
		{
			name: "stale signature stripped, signature last",
			url:  "http://example.com?" + SignatureParam + "=OLD&foo=bar",
			want: "http://example.com?foo=bar&" + SignatureParam + "=NEW",
		},
		{
			name: "stale signature in the middle",
			url:  "http://example.com?a=1&" + SignatureParam + "=OLD&b=2",
			want: "http://example.com?a=1&b=2&" + SignatureParam + "=NEW",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSignedURL(tt.url, "NEW"))
		})
	}
}
