package cryptox

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
)

const passwordHashScheme = "argon2id"

// HashPassword returns "argon2id$<salt hex>$<key hex>" for a fresh random
// salt. The format is what users.password_hash stores.
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(SaltSize)
	key := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	return passwordHashScheme + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key)
}

// VerifyPassword reports whether password matches a HashPassword result.
func VerifyPassword(password []byte, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != passwordHashScheme {
		return false
	}

	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil || len(want) != KeySize {
		return false
	}

	got := DeriveMasterKey(password, salt)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1
}
