package cryptox

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCipher(t *testing.T) *FieldCipher {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	c, err := NewFieldCipher(key)
	require.NoError(t, err)
	return c
}

func TestNewFieldCipher_KeyLengths(t *testing.T) {
	for _, n := range []int{16, 24, 32} {
		_, err := NewFieldCipher(make([]byte, n))
		require.NoError(t, err, "len %d", n)
	}
	for _, n := range []int{0, 15, 31, 33} {
		_, err := NewFieldCipher(make([]byte, n))
		require.ErrorIs(t, err, ErrInvalidKey, "len %d", n)
	}
}

func TestEncryptString_RoundTrip(t *testing.T) {
	c := newCipher(t)

	s, err := c.EncryptString("buy milk")
	require.NoError(t, err)

	iv, err := base64.StdEncoding.DecodeString(s.IV)
	require.NoError(t, err)
	assert.Len(t, iv, IVSize)
	assert.NotContains(t, s.Ciphertext, "milk")

	got, err := c.DecryptString(s)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got)
}

func TestEncryptString_FreshIVPerCall(t *testing.T) {
	c := newCipher(t)

	a, err := c.EncryptString("same")
	require.NoError(t, err)
	b, err := c.EncryptString("same")
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestEncryptString_Empty(t *testing.T) {
	c := newCipher(t)

	s, err := c.EncryptString("")
	require.NoError(t, err)
	// GCM still emits a tag, so the ciphertext is never empty.
	require.NotEmpty(t, s.Ciphertext)

	got, err := c.DecryptString(s)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestDecryptString_RequiresBothParts(t *testing.T) {
	c := newCipher(t)
	s, err := c.EncryptString("x")
	require.NoError(t, err)

	_, err = c.DecryptString(Sealed{Ciphertext: s.Ciphertext})
	assert.ErrorIs(t, err, ErrMissingIV)

	_, err = c.DecryptString(Sealed{IV: s.IV})
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = c.DecryptString(Sealed{Ciphertext: "!!!", IV: s.IV})
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = c.DecryptString(Sealed{Ciphertext: s.Ciphertext, IV: base64.StdEncoding.EncodeToString([]byte{1, 2})})
	assert.ErrorIs(t, err, ErrMissingIV)
}

func TestDecryptString_WrongIVOrKeyFails(t *testing.T) {
	c := newCipher(t)
	a, err := c.EncryptString("first")
	require.NoError(t, err)
	b, err := c.EncryptString("second")
	require.NoError(t, err)

	_, err = c.DecryptString(Sealed{Ciphertext: a.Ciphertext, IV: b.IV})
	assert.ErrorIs(t, err, ErrDecrypt)

	other := newCipher(t)
	_, err = other.DecryptString(a)
	assert.ErrorIs(t, err, ErrDecrypt)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestEncrypt_RandomSourceFailure(t *testing.T) {
	c := newCipher(t)

	orig := randReader
	randReader = failingReader{}
	t.Cleanup(func() { randReader = orig })

	_, err := c.EncryptString("x")
	require.Error(t, err)

	_, err = GenerateKey()
	require.Error(t, err)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret-password")

	if bytes.Equal(DeriveKey(password, []byte("salt-1")), DeriveKey(password, []byte("salt-2"))) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestDeriveSubkey_PurposeBound(t *testing.T) {
	key := bytes.Repeat([]byte{7}, 32)

	a, err := DeriveSubkey(key, "session")
	require.NoError(t, err)
	b, err := DeriveSubkey(key, "session")
	require.NoError(t, err)
	c, err := DeriveSubkey(key, "other")
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, key, a)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]byte("abc"), []byte("abc")))
	assert.False(t, Equal([]byte("abc"), []byte("abd")))
	assert.False(t, Equal([]byte("abc"), []byte("ab")))
}
