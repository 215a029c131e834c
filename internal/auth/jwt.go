package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/trznica/internal/model"
)

// Claims represents the JWT claims. One claims type serves every actor kind.
type Claims struct {
	ActorKind model.ActorKind `json:"actor_kind"`
	ActorID   int64           `json:"actor_id"`
	Name      string          `json:"name"`
	jwt.RegisteredClaims
}

// Actor returns the principal the token was issued to.
func (c *Claims) Actor() model.Actor {
	return model.Actor{Kind: c.ActorKind, ID: c.ActorID}
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateToken creates a new JWT for an actor with a unique JTI.
func GenerateToken(secret string, actor model.Actor, name string, ttl time.Duration) (string, error) {
	if !actor.Kind.Valid() {
		return "", fmt.Errorf("unknown actor kind %q", actor.Kind)
	}
	if ttl <= 0 {
		ttl = TokenExpiry
	}

	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := time.Now()
	claims := Claims{
		ActorKind: actor.Kind,
		ActorID:   actor.ID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   fmt.Sprintf("%s:%d", actor.Kind, actor.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !claims.ActorKind.Valid() || claims.ActorID <= 0 {
		return nil, fmt.Errorf("invalid token subject")
	}

	return claims, nil
}

// generateJTI creates a random token ID.
func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
