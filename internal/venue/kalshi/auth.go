// Package kalshi implements the Kalshi side of the scanner: the typed REST
// catalog and order-book clients and the authenticated WebSocket stream.
//
// REST reads need no credentials. The WebSocket requires an API key id and
// an RSA private key: each connect signs "{timestamp}{method}{path}" with
// RSA-PSS over SHA-256 and sends the signature in request headers.
package kalshi

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Signer produces Kalshi auth headers from an API key id and RSA key.
type Signer struct {
	keyID string
	key   *rsa.PrivateKey
}

// LoadSigner reads a PEM-encoded RSA private key (PKCS#1 or PKCS#8) from
// disk.
func LoadSigner(keyID, path string) (*Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	var key *rsa.PrivateKey
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		key = k
	} else {
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is %T, want RSA", parsed)
		}
		key = rsaKey
	}

	return &Signer{keyID: keyID, key: key}, nil
}

// Headers signs "{timestamp}{method}{path}" and returns the three Kalshi
// auth headers. The timestamp is milliseconds since epoch.
func (s *Signer) Headers(method, path string, now time.Time) (http.Header, error) {
	ts := fmt.Sprintf("%d", now.UnixMilli())
	digest := sha256.Sum256([]byte(ts + method + path))

	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	h := http.Header{}
	h.Set("KALSHI-ACCESS-KEY", s.keyID)
	h.Set("KALSHI-ACCESS-SIGNATURE", base64.StdEncoding.EncodeToString(sig))
	h.Set("KALSHI-ACCESS-TIMESTAMP", ts)
	return h, nil
}
