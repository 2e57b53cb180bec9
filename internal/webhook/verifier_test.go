package webhook

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) []byte {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return []byte(token)
}

func depositClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"currency":        "btc",
		"amount":          "0.015",
		"blockchain_txid": "0xabc",
		"address":         "addr456",
		"state":           "succeed",
		"tid":             "TID42",
	}
}

func TestVerifyAcceptsSignedToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	claims, err := v.Verify(sign(t, jwt.SigningMethodRS256, key, depositClaims()))
	require.NoError(t, err)
	require.Equal(t, "btc", claims.Currency)
	require.True(t, decimal.RequireFromString("0.015").Equal(claims.Amount))
	require.Equal(t, "0xabc", claims.BlockchainTxID)
	require.Nil(t, claims.RID)
	require.NotNil(t, claims.Address)
	require.Equal(t, "addr456", *claims.Address)
	require.Equal(t, "succeed", claims.State)
	require.Equal(t, Identifier("TID42"), claims.TID)
}

func TestVerifyAcceptsNumericFields(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	c := depositClaims()
	c["amount"] = 1.25
	c["tid"] = 9001
	claims, err := v.Verify(sign(t, jwt.SigningMethodRS256, key, c))
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("1.25").Equal(claims.Amount))
	require.Equal(t, Identifier("9001"), claims.TID)
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	trusted := newKey(t)
	attacker := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &trusted.PublicKey})

	claims, err := v.Verify(sign(t, jwt.SigningMethodRS256, attacker, depositClaims()))
	require.ErrorIs(t, err, ErrInvalidSignature)
	require.True(t, IsVerificationError(err))
	require.Equal(t, Claims{}, claims)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	t.Run("HS256", func(t *testing.T) {
		_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte("shared-secret"), depositClaims()))
		require.ErrorIs(t, err, ErrUnexpectedAlgorithm)
	})
	t.Run("RS512", func(t *testing.T) {
		_, err := v.Verify(sign(t, jwt.SigningMethodRS512, key, depositClaims()))
		require.ErrorIs(t, err, ErrUnexpectedAlgorithm)
	})
	t.Run("none", func(t *testing.T) {
		_, err := v.Verify(sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, depositClaims()))
		require.ErrorIs(t, err, ErrUnexpectedAlgorithm)
	})
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	for _, body := range []string{"", "   ", "not-a-token", "a.b", `{"currency":"btc"}`} {
		_, err := v.Verify([]byte(body))
		require.ErrorIs(t, err, ErrMalformedToken, "body %q", body)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	c := depositClaims()
	c["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err := v.Verify(sign(t, jwt.SigningMethodRS256, key, c))
	require.ErrorIs(t, err, ErrInvalidClaims)
}

func TestVerifyReportsMissingKey(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{})

	_, err := v.Verify(sign(t, jwt.SigningMethodRS256, key, depositClaims()))
	require.ErrorIs(t, err, ErrPublicKey)
}

func TestVerifyTrimsSurroundingWhitespace(t *testing.T) {
	key := newKey(t)
	v := NewVerifier(StaticKeyProvider{Key: &key.PublicKey})

	token := sign(t, jwt.SigningMethodRS256, key, depositClaims())
	_, err := v.Verify(append(append([]byte("\n"), token...), '\n'))
	require.NoError(t, err)
}
