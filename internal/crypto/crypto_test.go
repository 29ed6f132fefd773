package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNewCipherRejectsBadKeyLength(t *testing.T) {
	_, err := NewCipher([]byte("too short"))
	require.Error(t, err)

	_, err = NewCipher(testKey())
	require.NoError(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	plaintext := "felt anxious before the standup, better after a walk"
	encrypted, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, encrypted)

	decrypted, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestEncryptEmptyStringPassthrough(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	encrypted, err := c.Encrypt("")
	require.NoError(t, err)
	require.Empty(t, encrypted)

	decrypted, err := c.Decrypt("")
	require.NoError(t, err)
	require.Empty(t, decrypted)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCipher(testKey())
	require.NoError(t, err)

	encrypted, err := c.Encrypt("secret")
	require.NoError(t, err)

	_, err = c.Decrypt("!!" + encrypted)
	require.Error(t, err)

	other, err := NewCipher(append(testKey()[:31], 0xFF))
	require.NoError(t, err)
	_, err = other.Decrypt(encrypted)
	require.Error(t, err)
}
