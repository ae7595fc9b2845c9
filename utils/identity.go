package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIdentity       = errors.New("invalid identity token")
	ErrIdentityNotConfigured = errors.New("identity provider key not configured")
)

// IdentityClaims are read from the ID token the identity provider hands the
// browser after login. Subject carries the DID.
type IdentityClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// IdentityVerifier checks provider ID tokens against the provider's public key.
type IdentityVerifier struct {
	key     any
	methods []string
	opts    []jwt.ParserOption
}

// NewIdentityVerifier accepts an RSA, ECDSA or Ed25519 public key in PEM form.
// Issuer and audience are checked only when set.
func NewIdentityVerifier(publicKeyPEM, issuer, audience string) (*IdentityVerifier, error) {
	if publicKeyPEM == "" {
		return nil, ErrIdentityNotConfigured
	}

	v := &IdentityVerifier{}
	pem := []byte(publicKeyPEM)
	if key, err := jwt.ParseRSAPublicKeyFromPEM(pem); err == nil {
		v.key = key
		v.methods = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	} else if key, err := jwt.ParseECPublicKeyFromPEM(pem); err == nil {
		v.key = key
		v.methods = []string{"ES256", "ES384", "ES512"}
	} else if key, err := jwt.ParseEdPublicKeyFromPEM(pem); err == nil {
		v.key = key
		v.methods = []string{jwt.SigningMethodEdDSA.Alg()}
	} else {
		return nil, fmt.Errorf("parse identity provider key: %w", err)
	}

	v.opts = []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		v.opts = append(v.opts, jwt.WithAudience(audience))
	}
	return v, nil
}

// Verify checks signature, expiry, issuer and audience and returns the claims.
func (v *IdentityVerifier) Verify(tokenString string) (*IdentityClaims, error) {
	claims := IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, v.opts...)

	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidIdentity)
	}
	return &claims, nil
}
