package webhook

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// PublicKeyEnv names the environment variable holding the custodian's
// base64 encoded verification key.
const PublicKeyEnv = "OPENFINEX_CLOUD_PUBLIC_KEY"

// PublicKeyProvider supplies the key used to verify webhook signatures.
// The key never comes from the request being verified.
type PublicKeyProvider interface {
	PublicKey() (*rsa.PublicKey, error)
}

// EnvKeyProvider reads the key from the process environment on every call.
type EnvKeyProvider struct {
	// Name overrides PublicKeyEnv when set.
	Name string
}

// PublicKey implements PublicKeyProvider.
func (p EnvKeyProvider) PublicKey() (*rsa.PublicKey, error) {
	name := p.Name
	if name == "" {
		name = PublicKeyEnv
	}
	encoded, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(encoded) == "" {
		return nil, fmt.Errorf("%s is not set", name)
	}
	return ParsePublicKey(encoded)
}

// StaticKeyProvider always returns the same key.
type StaticKeyProvider struct {
	Key *rsa.PublicKey
}

// PublicKey implements PublicKeyProvider.
func (p StaticKeyProvider) PublicKey() (*rsa.PublicKey, error) {
	if p.Key == nil {
		return nil, errors.New("no public key configured")
	}
	return p.Key, nil
}

// ParsePublicKey decodes base64 (URL-safe preferred, padding optional) key
// material in PEM or DER form.
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	material, err := decodeBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	if bytes.Contains(material, []byte("-----BEGIN")) {
		key, err := jwt.ParseRSAPublicKeyFromPEM(material)
		if err != nil {
			return nil, fmt.Errorf("parse pem public key: %w", err)
		}
		return key, nil
	}

	if parsed, err := x509.ParsePKIXPublicKey(material); err == nil {
		key, ok := parsed.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("public key is %T, want RSA", parsed)
		}
		return key, nil
	}
	key, err := x509.ParsePKCS1PublicKey(material)
	if err != nil {
		return nil, fmt.Errorf("parse der public key: %w", err)
	}
	return key, nil
}

// EncodePublicKey renders key the way PublicKeyEnv expects it: a PKIX PEM
// block, URL-safe base64 encoded.
func EncodePublicKey(key *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", err
	}
	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return base64.URLEncoding.EncodeToString(block), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimRight(s, "=")
	if out, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return out, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
