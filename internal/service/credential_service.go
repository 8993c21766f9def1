package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// CredentialService is the token store: it persists one encrypted OAuth
// refresh token per (user, provider) and hands out decrypted tokens to
// the sync pipeline.
type CredentialService struct {
	store port.CredentialStore
	codec port.SecretCodec
}

// NewCredentialService creates a new credential service.
func NewCredentialService(store port.CredentialStore, codec port.SecretCodec) *CredentialService {
	return &CredentialService{store: store, codec: codec}
}

// GetRefreshToken returns the decrypted refresh token for (user, provider),
// or port.ErrNoCredential when none is stored.
func (s *CredentialService) GetRefreshToken(ctx context.Context, provider string, userID int64) (string, error) {
	blob, err := s.store.GetEncryptedToken(ctx, userID, provider)
	if errors.Is(err, port.ErrNoCredential) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}

	token, err := s.codec.Decrypt(blob)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	return token, nil
}

// SaveRefreshToken encrypts and stores a refresh token, overwriting any
// previous credential for (user, provider).
func (s *CredentialService) SaveRefreshToken(ctx context.Context, provider string, userID int64, refreshToken string) error {
	blob, err := s.codec.Encrypt(refreshToken)
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}
	if err := s.store.UpsertEncryptedToken(ctx, userID, provider, blob); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

// EncryptToken encrypts a refresh token without storing it, for callers
// that persist it atomically with other rows (first-login user creation).
func (s *CredentialService) EncryptToken(refreshToken string) (string, error) {
	return s.codec.Encrypt(refreshToken)
}
