package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewAESGCMCodec(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "valid 32-byte key", key: testKey},
		{name: "not hex", key: "zz", wantErr: "decode encryption key"},
		{name: "too short", key: "0001", wantErr: "32 bytes"},
		{name: "empty", key: "", wantErr: "32 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, err := NewAESGCMCodec(tt.key)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, codec)
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec, err := NewAESGCMCodec(testKey)
	require.NoError(t, err)

	secrets := []string{
		"1//0abcdefghijklmnop-refresh-token",
		"x",
		strings.Repeat("long-token-", 50),
	}

	for _, secret := range secrets {
		blob, err := codec.Encrypt(secret)
		require.NoError(t, err)
		assert.NotEqual(t, secret, blob)

		got, err := codec.Decrypt(blob)
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	}
}

func TestEncryptIsNotDeterministic(t *testing.T) {
	codec, err := NewAESGCMCodec(testKey)
	require.NoError(t, err)

	a, err := codec.Encrypt("same secret")
	require.NoError(t, err)
	b, err := codec.Encrypt("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCiphertextLayout(t *testing.T) {
	codec, err := NewAESGCMCodec(testKey)
	require.NoError(t, err)

	blob, err := codec.Encrypt("secret")
	require.NoError(t, err)

	raw, err := hex.DecodeString(blob)
	require.NoError(t, err)

	// iv (16) + tag (16) + ciphertext (len plaintext)
	assert.Len(t, raw, ivLength+tagLength+len("secret"))
}

func TestDecryptRejectsTampering(t *testing.T) {
	codec, err := NewAESGCMCodec(testKey)
	require.NoError(t, err)

	blob, err := codec.Encrypt("secret")
	require.NoError(t, err)

	// Flip one nibble in the ciphertext portion
	raw := []byte(blob)
	last := len(raw) - 1
	if raw[last] == 'f' {
		raw[last] = '0'
	} else {
		raw[last] = 'f'
	}

	_, err = codec.Decrypt(string(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decrypt data")
}

func TestDecryptRejectsGarbage(t *testing.T) {
	codec, err := NewAESGCMCodec(testKey)
	require.NoError(t, err)

	_, err = codec.Decrypt("not hex at all")
	assert.Error(t, err)

	_, err = codec.Decrypt("00ff00ff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
}
