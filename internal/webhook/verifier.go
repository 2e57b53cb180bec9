package webhook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm is the only signing method accepted for notifications.
const Algorithm = "RS256"

var (
	ErrMalformedToken      = errors.New("malformed webhook token")
	ErrUnexpectedAlgorithm = errors.New("unexpected signing algorithm")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrInvalidClaims       = errors.New("invalid webhook claims")
	ErrPublicKey           = errors.New("webhook public key unavailable")
)

// IsVerificationError reports whether err came out of Verify.
func IsVerificationError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrUnexpectedAlgorithm) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrInvalidClaims) ||
		errors.Is(err, ErrPublicKey)
}

// Verifier checks RS256 signed notifications.
type Verifier struct {
	keys   PublicKeyProvider
	parser *jwt.Parser
}

// NewVerifier builds a Verifier. keys defaults to EnvKeyProvider.
func NewVerifier(keys PublicKeyProvider) *Verifier {
	if keys == nil {
		keys = EnvKeyProvider{}
	}
	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{Algorithm})),
	}
}

// Verify validates the compact token in raw and returns its claims. On any
// failure the zero Claims is returned.
func (v *Verifier) Verify(raw []byte) (Claims, error) {
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return Claims{}, fmt.Errorf("%w: empty body", ErrMalformedToken)
	}

	unverified, _, err := jwt.NewParser().ParseUnverified(token, &Claims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if alg, _ := unverified.Header["alg"].(string); alg != Algorithm {
		return Claims{}, fmt.Errorf("%w: %q", ErrUnexpectedAlgorithm, alg)
	}

	key, err := v.keys.PublicKey()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrPublicKey, err)
	}

	var claims Claims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	default:
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	}
	if !parsed.Valid {
		return Claims{}, ErrInvalidSignature
	}
	return claims, nil
}
