package signing

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidPrivateKey is returned when the configured key material cannot
// be parsed or is not an elliptic-curve private key.
var ErrInvalidPrivateKey = errors.New("private key is not a valid EC private key")

// LoadECPrivateKey reads a PEM-encoded EC private key from path. Both
// SEC 1 ("EC PRIVATE KEY") and PKCS#8 ("PRIVATE KEY") encodings are
// accepted; any other key type is rejected.
func LoadECPrivateKey(path string) (*ecdsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key %s: %w", path, err)
	}
	return ParseECPrivateKey(data)
}

// ParseECPrivateKey parses PEM-encoded EC private key material.
func ParseECPrivateKey(pemData []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found: %w", ErrInvalidPrivateKey)
	}

	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse EC private key: %w", ErrInvalidPrivateKey)
		}
		return key, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS#8 private key: %w", ErrInvalidPrivateKey)
		}
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key type %T: %w", key, ErrInvalidPrivateKey)
		}
		return ecKey, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block %q: %w", block.Type, ErrInvalidPrivateKey)
	}
}
