package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phillip/nft-ticketing-go/models"
)

const tokenIssuer = "nft-ticketing"

var ErrInvalidToken = errors.New("invalid session token")

type SessionClaims struct {
	DID  string      `json:"did"`
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for the user.
func IssueToken(secret []byte, user *models.User, now time.Time, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		DID:  user.DID,
		Role: user.Role,
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.DID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(secret []byte, tokenString string) (*SessionClaims, error) {
	claims := SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))

	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.DID == "" {
		return nil, fmt.Errorf("%w: missing did", ErrInvalidToken)
	}
	return &claims, nil
}
