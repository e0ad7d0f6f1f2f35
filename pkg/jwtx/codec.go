package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrPurpose     = errors.New("jwtx: purpose mismatch")
	ErrWeakSecret  = errors.New("jwtx: signing secret too short")
)

// MinSecretLength is the smallest accepted HMAC secret, in bytes. HS256
// secrets shorter than the hash output weaken the MAC.
const MinSecretLength = 32

// Codec signs and verifies the service's tokens. It is pure: the secret and
// issuer are fixed at construction, set once at startup, and never mutated,
// so a single Codec is safe for concurrent use across all request handlers.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec builds a Codec around a process-wide HS256 signing secret.
func NewCodec(secret []byte, issuer string) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &Codec{secret: key, issuer: issuer}, nil
}

// Issue signs a token for subject with the given purpose and lifetime.
// The returned Claims carry the generated jti so callers can track it.
func (c *Codec) Issue(
	subject, role string,
	purpose Purpose,
	ttl time.Duration,
	now time.Time,
) (string, Claims, error) {
	claims := NewClaims(subject, role, purpose, ttl, c.issuer, now)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", Claims{}, err
	}

	return signed, claims, nil
}

// Verify parses and validates a token, enforcing signature, expiry, issuer
// and purpose. The purpose check happens after signature validation so a
// forged purpose claim cannot be probed.
func (c *Codec) Verify(token string, purpose Purpose) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, ErrAlgMismatch
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !parsed.Valid {
		return Claims{}, ErrMalformed
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrIssuer
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrMalformed
	}
	if claims.Purpose != purpose {
		return Claims{}, ErrPurpose
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	default:
		return ErrMalformed
	}
}
