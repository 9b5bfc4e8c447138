package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the structure of the JWT claims.
type Claims struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies session tokens with a single HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for p that expires after the configured TTL.
func (ti *TokenIssuer) Issue(p Principal) (string, error) {
	if !p.Kind.Valid() || p.ID.IsZero() {
		return "", fmt.Errorf("cannot issue token for principal %v", p)
	}
	now := ti.now()
	claims := &Claims{
		Kind: p.Kind,
		ID:   p.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   p.ID.Hex(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and recovers the principal.
// Every failure is reported as ErrInvalidToken wrapping the cause.
func (ti *TokenIssuer) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	if !claims.Kind.Valid() {
		return Principal{}, fmt.Errorf("%w: unknown principal kind %q", ErrInvalidToken, claims.Kind)
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: malformed principal id", ErrInvalidToken)
	}
	return Principal{Kind: claims.Kind, ID: id}, nil
}
