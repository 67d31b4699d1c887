package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skilledge/skilledge-server/internal/model"
)

// Claims represents JWT claims carrying the learner identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	TokenType string    `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	ttl       time.Duration
}

// DefaultTTL is the access token lifetime when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

const typeAccess = "access"

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &JWT{secretKey: secretKey, ttl: ttl}
}

var _ model.TokenManager = (*JWT)(nil)

// GenerateAccessToken creates an access token for the identity.
func (j *JWT) GenerateAccessToken(identity model.Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID:    identity.UserID,
		Name:      identity.Name,
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and extracts its identity.
func (j *JWT) ParseAccessToken(tokenString string) (model.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return model.Identity{}, fmt.Errorf("access token is invalid")
	}
	if claims.TokenType != typeAccess {
		return model.Identity{}, fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Name == "" {
		return model.Identity{}, fmt.Errorf("access token has no name")
	}
	return model.Identity{UserID: claims.UserID, Name: claims.Name}, nil
}
