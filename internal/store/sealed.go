// ABOUTME: Store decorator that encrypts token values at rest with NaCl secretbox
// ABOUTME: Plaintext rows written before sealing was enabled are still readable

package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

// sealedPrefix marks values produced by SealedStore
const sealedPrefix = "sealed:v1:"

// ErrUnseal is returned when a sealed value cannot be opened with the configured key
var ErrUnseal = errors.New("cannot decrypt token")

// SealedStore wraps a Store and seals every value before it reaches the backing store.
type SealedStore struct {
	Store
	key [32]byte
}

// NewSealedStore derives a secretbox key from passphrase and wraps inner.
func NewSealedStore(inner Store, passphrase string) (*SealedStore, error) {
	if passphrase == "" {
		return nil, errors.New("encryption key is empty")
	}
	return &SealedStore{
		Store: inner,
		key:   sha256.Sum256([]byte(passphrase)),
	}, nil
}

// SetToken seals value and writes it through.
func (s *SealedStore) SetToken(ctx context.Context, key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.Store.SetToken(ctx, key, sealed)
}

// GetToken reads and opens a token.
func (s *SealedStore) GetToken(ctx context.Context, key string) (*Token, error) {
	tok, err := s.Store.GetToken(ctx, key)
	if err != nil {
		return nil, err
	}
	plain, err := s.open(tok.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	tok.Value = plain
	return tok, nil
}

// ListTokens opens every token. Rows that fail to open keep an empty value
// and are reported through the returned error alongside the readable rows.
func (s *SealedStore) ListTokens(ctx context.Context) ([]*Token, error) {
	tokens, err := s.Store.ListTokens(ctx)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, tok := range tokens {
		plain, err := s.open(tok.Value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tok.Key, err))
			tok.Value = ""
			continue
		}
		tok.Value = plain
	}
	return tokens, errors.Join(errs...)
}

func (s *SealedStore) seal(plain string) (string, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *SealedStore) open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < 24 {
		return "", ErrUnseal
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", ErrUnseal
	}
	return string(plain), nil
}

var _ Store = (*SealedStore)(nil)
