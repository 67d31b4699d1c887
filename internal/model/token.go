package model

import "github.com/google/uuid"

// Identity is the authenticated principal carried by an access token.
type Identity struct {
	UserID uuid.UUID
	Name   string
}

// TokenManager generates and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(identity Identity) (string, error)
	ParseAccessToken(token string) (Identity, error)
}
