package security

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenParser verifies optional HS256 bearer tokens. The token subject is
// used as the owner identity for the server-side session quota; there is no
// user store behind it.
type TokenParser struct {
	secret []byte
}

// NewTokenParser creates a parser for the given shared secret.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// ParseSubject validates the token and returns its subject claim.
func (p *TokenParser) ParseSubject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// Sign issues a token for a subject. Used by operators to hand out stable
// identities, and by tests.
func (p *TokenParser) Sign(subject string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	return token.SignedString(p.secret)
}
