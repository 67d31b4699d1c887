package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/skilledge/skilledge-server/internal/model"
)

const certificatePrefix = "certificates/"

var _ model.CertificateStore = (*CertificateStore)(nil)

// CertificateStore keeps issued certificates as JSON objects keyed by hash.
type CertificateStore struct {
	storage model.Storage
}

func NewCertificateStore(storage model.Storage) *CertificateStore {
	return &CertificateStore{storage: storage}
}

func certificateKey(hash string) string {
	return certificatePrefix + hash + ".json"
}

func (s *CertificateStore) Save(ctx context.Context, cert model.Certificate) error {
	raw, err := json.Marshal(cert)
	if err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	if err := s.storage.Upload(ctx, certificateKey(cert.Hash), bytes.NewReader(raw), int64(len(raw)), "application/json"); err != nil {
		return model.NewStorageError("save certificate", err)
	}
	return nil
}

func (s *CertificateStore) Get(ctx context.Context, hash string) (model.Certificate, error) {
	rc, err := s.storage.Download(ctx, certificateKey(hash))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Certificate{}, model.ErrNotFound
		}
		return model.Certificate{}, model.NewStorageError("get certificate", err)
	}
	defer rc.Close()

	var cert model.Certificate
	if err := json.NewDecoder(rc).Decode(&cert); err != nil {
		return model.Certificate{}, model.NewStorageError("decode certificate", err)
	}
	return cert, nil
}
