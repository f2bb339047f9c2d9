package repository

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedTokenStore encrypts the credential before handing it to the wrapped
// store, using XChaCha20-Poly1305 with a random nonce per write.
type SealedTokenStore struct {
	inner TokenStore
	aead  cipher.AEAD
}

// NewSealedTokenStore wraps inner. key must be 32 bytes.
func NewSealedTokenStore(inner TokenStore, key []byte) (*SealedTokenStore, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating credential cipher: %w", err)
	}
	return &SealedTokenStore{inner: inner, aead: aead}, nil
}

// DecodeKey parses a base64 encoded store key.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding store key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("store key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return key, nil
}

func (s *SealedTokenStore) Token(ctx context.Context) (string, error) {
	stored, err := s.inner.Token(ctx)
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(stored)
	if err != nil || len(raw) < s.aead.NonceSize() {
		return "", ErrCorruptCredential
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrCorruptCredential
	}
	return string(plain), nil
}

func (s *SealedTokenStore) SaveToken(ctx context.Context, token string) error {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(token)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(token), nil)
	return s.inner.SaveToken(ctx, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *SealedTokenStore) ClearToken(ctx context.Context) error {
	return s.inner.ClearToken(ctx)
}
