package auth

import (
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned when the supplied secret does not match.
var ErrUnauthorized = errors.New("unauthorized")

// Verifier checks a request-supplied secret against the configured one.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify succeeds only if a secret is configured and supplied matches it.
func (v *Verifier) Verify(supplied string) error {
	if v == nil || v.secret == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(v.secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
