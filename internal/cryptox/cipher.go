// Package cryptox implements the at-rest encryption used for stored secrets
// and the key helpers around it.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

const (
	blobVersion byte = 0x01
	nonceSize        = 12
)

// Cipher encrypts and decrypts secrets with AES-256-GCM.
//
// A blob has the layout version(1) || nonce(12) || ciphertext+tag.
// The version byte is authenticated as additional data, so changing it
// fails decryption like any other tampering.
//
// Cipher is immutable after NewCipher and safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher for a 32-byte key. The key slice is not retained.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: want %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) ([]byte, error) {
	blob := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+c.aead.Overhead())
	blob[0] = blobVersion

	if _, err := rand.Read(blob[1 : 1+nonceSize]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	nonce := blob[1 : 1+nonceSize]
	return c.aead.Seal(blob, nonce, []byte(plaintext), []byte{blobVersion}), nil
}

// Decrypt opens a blob produced by Encrypt. Every failure matches
// common.ErrorDecryption and no partial plaintext is returned.
func (c *Cipher) Decrypt(blob []byte) (string, error) {
	if len(blob) < 1+nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: blob too short", common.ErrorDecryption)
	}
	if blob[0] != blobVersion {
		return "", fmt.Errorf("%w: unknown blob version %d", common.ErrorDecryption, blob[0])
	}

	nonce := blob[1 : 1+nonceSize]
	plaintext, err := c.aead.Open(nil, nonce, blob[1+nonceSize:], []byte{blobVersion})
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", common.ErrorDecryption)
	}

	return string(plaintext), nil
}
