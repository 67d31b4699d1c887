package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Achievement is what a certificate attests to.
type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
	Difficulty  string `json:"difficulty,omitempty"`
}

// Certificate is a locally hashed and signed record of an achievement.
// Nothing verifies it against a ledger.
type Certificate struct {
	ID                     uuid.UUID   `json:"id"`
	Recipient              string      `json:"recipient"`
	AchievementTitle       string      `json:"achievementTitle"`
	AchievementDescription string      `json:"achievementDescription,omitempty"`
	Points                 int         `json:"points"`
	DateIssued             time.Time   `json:"dateIssued"`
	IssuedBy               string      `json:"issuedBy"`
	Hash                   string      `json:"certificateHash"`
	Signature              string      `json:"digitalSignature"`
	Proof                  ProofOfWork `json:"proofOfWork"`
	Metadata               NFTMetadata `json:"metadata"`
}

// ProofOfWork is the result of the bounded nonce search.
type ProofOfWork struct {
	Hash  string `json:"hash"`
	Nonce int    `json:"nonce"`
	Found bool   `json:"found"`
}

// NFTMetadata mirrors the ERC-721 metadata shape.
type NFTMetadata struct {
	Name       string         `json:"name"`
	Desc       string         `json:"description,omitempty"`
	Attributes []NFTAttribute `json:"attributes"`
}

// NFTAttribute is a single trait of the metadata.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// CertificateStore persists issued certificates by hash.
type CertificateStore interface {
	Save(ctx context.Context, cert Certificate) error
	Get(ctx context.Context, hash string) (Certificate, error)
}
