package cryptox

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(GenerateKey())
	require.NoError(t, err)
	return c
}

func TestNewCipher_KeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 24, 31, 33} {
		_, err := NewCipher(make([]byte, n))
		assert.Error(t, err, "key of %d bytes must be rejected", n)
	}

	_, err := NewCipher(make([]byte, KeySize))
	assert.NoError(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "empty", plaintext: ""},
		{name: "ascii", plaintext: "p@ss1"},
		{name: "unicode", plaintext: "пароль-密码-🔑"},
		{name: "long", plaintext: strings.Repeat("x", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.Encrypt(tt.plaintext)
			require.NoError(t, err)
			require.NotEmpty(t, blob)
			assert.Equal(t, blobVersion, blob[0])

			got, err := c.Decrypt(blob)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestCipher_FreshNonce(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCipher_TamperDetection(t *testing.T) {
	c := newTestCipher(t)

	blob, err := c.Encrypt("p@ss1")
	require.NoError(t, err)

	for i := range blob {
		tampered := append([]byte(nil), blob...)
		tampered[i] ^= 0x01

		got, err := c.Decrypt(tampered)
		assert.True(t, errors.Is(err, common.ErrorDecryption), "byte %d: got %v", i, err)
		assert.Empty(t, got)
	}
}

func TestCipher_WrongKey(t *testing.T) {
	a := newTestCipher(t)
	b := newTestCipher(t)

	blob, err := a.Encrypt("p@ss1")
	require.NoError(t, err)

	_, err = b.Decrypt(blob)
	assert.ErrorIs(t, err, common.ErrorDecryption)
	assert.NotContains(t, err.Error(), "p@ss1")
}

func TestCipher_ShortBlob(t *testing.T) {
	c := newTestCipher(t)

	for _, blob := range [][]byte{nil, {}, {blobVersion}, make([]byte, 1+nonceSize)} {
		_, err := c.Decrypt(blob)
		assert.ErrorIs(t, err, common.ErrorDecryption)
	}
}

func TestCipher_ConcurrentUse(t *testing.T) {
	c := newTestCipher(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			blob, err := c.Encrypt("shared")
			if !assert.NoError(t, err) {
				return
			}
			got, err := c.Decrypt(blob)
			assert.NoError(t, err)
			assert.Equal(t, "shared", got)
		}()
	}
	wg.Wait()
}
