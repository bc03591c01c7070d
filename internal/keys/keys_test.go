package keys

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyRoundTrip(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)

	decoded, err := DecodePublic(EncodePublic(pair.Public))
	require.NoError(t, err)
	assert.Equal(t, pair.Public, decoded)
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)

	decoded, err := DecodePrivate(EncodePrivate(pair.Private))
	require.NoError(t, err)
	assert.Equal(t, pair.Private, decoded)
}

func TestDecodePrivateAcceptsSeedForm(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)

	seedHex := EncodePrivate(pair.Private)[:64] // first 32 bytes are the seed
	decoded, err := DecodePrivate(seedHex)
	require.NoError(t, err)
	assert.Equal(t, pair.Private, decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodePublic("not-hex")
	assert.Error(t, err)

	_, err = DecodePublic("abcd")
	assert.Error(t, err)

	_, err = DecodePrivate("abcd")
	assert.Error(t, err)
}

func TestSignAndVerifyDigest(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)
	digest := sha256.Sum256([]byte("payload"))

	sig := SignDigest(pair.Private, digest[:])
	assert.True(t, VerifyDigest(pair.Public, digest[:], sig))

	other := sha256.Sum256([]byte("tampered"))
	assert.False(t, VerifyDigest(pair.Public, other[:], sig))
}

func TestVerifyDigestRejectsMalformedSignature(t *testing.T) {
	pair, err := Generate()
	require.NoError(t, err)
	digest := sha256.Sum256([]byte("payload"))

	assert.False(t, VerifyDigest(pair.Public, digest[:], "%%%not-base64%%%"))
	assert.False(t, VerifyDigest(pair.Public, digest[:], ""))
}
