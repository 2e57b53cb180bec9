package webhook

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestEnvKeyProviderReadsEncodedPEM(t *testing.T) {
	key := newKey(t)
	encoded, err := EncodePublicKey(&key.PublicKey)
	require.NoError(t, err)
	t.Setenv(PublicKeyEnv, encoded)

	got, err := EnvKeyProvider{}.PublicKey()
	require.NoError(t, err)
	require.True(t, key.PublicKey.Equal(got))

	v := NewVerifier(nil)
	_, err = v.Verify(sign(t, jwt.SigningMethodRS256, key, depositClaims()))
	require.NoError(t, err)
}

func TestEnvKeyProviderMissingVariable(t *testing.T) {
	t.Setenv("CUSTODY_TEST_EMPTY_KEY", "")
	_, err := EnvKeyProvider{Name: "CUSTODY_TEST_EMPTY_KEY"}.PublicKey()
	require.Error(t, err)
}

func TestParsePublicKeyFormats(t *testing.T) {
	key := newKey(t)

	pkix, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pkcs1 := x509.MarshalPKCS1PublicKey(&key.PublicKey)
	pkcs1PEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: pkcs1})

	cases := map[string]string{
		"der pkix url":      base64.URLEncoding.EncodeToString(pkix),
		"der pkix unpadded": base64.RawURLEncoding.EncodeToString(pkix),
		"der pkcs1 std":     base64.StdEncoding.EncodeToString(pkcs1),
		"pem pkcs1":         base64.URLEncoding.EncodeToString(pkcs1PEM),
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParsePublicKey(encoded)
			require.NoError(t, err)
			require.True(t, key.PublicKey.Equal(got))
		})
	}

	wrapped, err := EncodePublicKey(&key.PublicKey)
	require.NoError(t, err)
	got, err := ParsePublicKey(wrapped[:40] + "\n" + wrapped[40:])
	require.NoError(t, err)
	require.True(t, key.PublicKey.Equal(got))
}

func TestParsePublicKeyRejectsGarbage(t *testing.T) {
	_, err := ParsePublicKey("%%%")
	require.Error(t, err)

	_, err = ParsePublicKey(base64.URLEncoding.EncodeToString([]byte(strings.Repeat("x", 64))))
	require.Error(t, err)
}
