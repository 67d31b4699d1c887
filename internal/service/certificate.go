package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skilledge/skilledge-server/internal/logger"
	"github.com/skilledge/skilledge-server/internal/model"
)

const (
	powPrefix        = "0000"
	powMaxIterations = 10000
	defaultIssuer    = "SkillEdge Platform"
)

// certificateContent is the hashed part of a certificate. Field order is
// fixed so the encoding is canonical.
type certificateContent struct {
	Recipient   string `json:"recipient"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// CertificateHash is the hex SHA-256 of the canonical certificate content.
// It depends only on its inputs.
func CertificateHash(recipient string, achievement model.Achievement) string {
	raw, _ := json.Marshal(certificateContent{
		Recipient:   recipient,
		Title:       achievement.Title,
		Description: achievement.Description,
		Points:      achievement.Points,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Sign returns the hex HMAC-SHA256 of hash under secret.
func Sign(secret, hash string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(hash))
	return hex.EncodeToString(mac.Sum(nil))
}

// ProofOfWork searches for a nonce whose SHA-256 of data+nonce starts with
// the difficulty prefix. The search stops after a fixed number of
// iterations and reports the last hash tried.
func ProofOfWork(data string) model.ProofOfWork {
	var hash string
	for nonce := 0; nonce < powMaxIterations; nonce++ {
		sum := sha256.Sum256([]byte(data + strconv.Itoa(nonce)))
		hash = hex.EncodeToString(sum[:])
		if strings.HasPrefix(hash, powPrefix) {
			return model.ProofOfWork{Hash: hash, Nonce: nonce, Found: true}
		}
	}
	return model.ProofOfWork{Hash: hash, Nonce: powMaxIterations - 1, Found: false}
}

// Metadata derives ERC-721 style metadata from an achievement.
func Metadata(achievement model.Achievement, issued time.Time) model.NFTMetadata {
	difficulty := achievement.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}
	return model.NFTMetadata{
		Name: "SkillEdge Achievement: " + achievement.Title,
		Desc: achievement.Description,
		Attributes: []model.NFTAttribute{
			{TraitType: "Achievement Type", Value: achievement.Title},
			{TraitType: "Points", Value: achievement.Points},
			{TraitType: "Difficulty", Value: difficulty},
			{TraitType: "Issue Date", Value: issued.UTC().Format(time.RFC3339)},
		},
	}
}

// Certificates issues locally signed achievement certificates.
type Certificates struct {
	store     model.CertificateStore
	userStore model.UserStore
	secret    string
	issuer    string
	logger    *logger.Logger
}

func NewCertificates(store model.CertificateStore, userStore model.UserStore, secret, issuer string, logger *logger.Logger) *Certificates {
	if issuer == "" {
		issuer = defaultIssuer
	}
	return &Certificates{
		store:     store,
		userStore: userStore,
		secret:    secret,
		issuer:    issuer,
		logger:    logger,
	}
}

// Issue creates, signs and stores a certificate for name.
func (s *Certificates) Issue(ctx context.Context, name string, achievement model.Achievement) (model.Certificate, error) {
	s.logger.Debug("Certificates service: issuing certificate",
		"name", name,
		"title", achievement.Title)

	if achievement.Title == "" {
		return model.Certificate{}, model.NewValidationError("title", "missing title")
	}
	if achievement.Points < 0 {
		return model.Certificate{}, model.NewValidationError("points", "must not be negative")
	}

	if _, err := s.userStore.GetByName(ctx, name); err != nil {
		return model.Certificate{}, fmt.Errorf("failed to get recipient: %w", err)
	}

	issued := time.Now().UTC()
	hash := CertificateHash(name, achievement)
	cert := model.Certificate{
		ID:                     uuid.New(),
		Recipient:              name,
		AchievementTitle:       achievement.Title,
		AchievementDescription: achievement.Description,
		Points:                 achievement.Points,
		DateIssued:             issued,
		IssuedBy:               s.issuer,
		Hash:                   hash,
		Signature:              Sign(s.secret, hash),
		Proof:                  ProofOfWork(hash),
		Metadata:               Metadata(achievement, issued),
	}

	if err := s.store.Save(ctx, cert); err != nil {
		s.logger.Error("Certificates service: failed to store certificate",
			"name", name,
			"hash", hash,
			"error", err.Error())
		return model.Certificate{}, fmt.Errorf("failed to store certificate: %w", err)
	}

	s.logger.Info("Certificates service: certificate issued",
		"name", name,
		"hash", hash)
	return cert, nil
}

// Get returns a stored certificate by hash.
func (s *Certificates) Get(ctx context.Context, hash string) (model.Certificate, error) {
	cert, err := s.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			s.logger.Error("Certificates service: failed to load certificate",
				"hash", hash,
				"error", err.Error())
		}
		return model.Certificate{}, fmt.Errorf("failed to get certificate: %w", err)
	}
	return cert, nil
}
