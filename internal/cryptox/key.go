package cryptox

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the salt length used by DeriveMasterKey callers.
const SaltSize = 16

// GenerateKey returns a fresh random key of KeySize bytes.
func GenerateKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// EncodeKey renders a key as standard base64.
func EncodeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// ParseKey decodes a standard base64 key and checks its length.
// Surrounding whitespace (e.g. a trailing newline in a secret file) is ignored.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64")
	}
	if len(key) != KeySize {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("invalid key length: want %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// DeriveMasterKey stretches a passphrase into a KeySize key with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}
