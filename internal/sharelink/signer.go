package sharelink

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Kind tells which entity a link exposes
type Kind string

const (
	KindPerson  Kind = "person"
	KindExpense Kind = "expense"
)

// Claims is everything a share token vouches for. The URL query repeats some of it
// for readability, but only the signed values are trusted.
type Claims struct {
	LinkID    string `json:"lid"`
	Kind      Kind   `json:"knd"`
	TargetID  string `json:"tid"`
	ExpiresMs int64  `json:"xms,omitempty"` // 0 never expires
	Include1  bool   `json:"in1"`           // transactions / details
	Include2  bool   `json:"in2"`           // personal info / participants
	Protected bool   `json:"pwd,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 share tokens
type Signer struct {
	secret []byte
}

// NewSigner creates a signer with the given HMAC secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign produces the opaque token embedded in a share URL
func (s *Signer) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and returns the claims. Expiry is millisecond based
// and checked by the caller against its own clock.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.LinkID == "" || claims.TargetID == "" {
		return nil, ErrInvalidLink
	}
	return claims, nil
}
