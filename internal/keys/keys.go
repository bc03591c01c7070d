// Package keys owns Ed25519 key generation, encoding, and digest signing for
// the credential pipeline. Signatures are made over a SHA-256 digest of
// canonical bytes, never over raw documents.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Pair holds a freshly generated Ed25519 keypair.
type Pair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate returns a new Ed25519 keypair from crypto/rand.
func Generate() (Pair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Pair{}, fmt.Errorf("generate ed25519 keypair: %w", err)
	}
	return Pair{Public: pub, Private: priv}, nil
}

// EncodePublic renders a public key as lowercase hex, the form published in
// DID documents.
func EncodePublic(pub ed25519.PublicKey) string {
	return hex.EncodeToString(pub)
}

// DecodePublic parses a hex public key as published via the registry.
func DecodePublic(s string) (ed25519.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("decode public key: want %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// EncodePrivate renders a private key as hex. Only ever returned once, at
// identity creation.
func EncodePrivate(priv ed25519.PrivateKey) string {
	return hex.EncodeToString(priv)
}

// DecodePrivate parses a hex private key. Both the 64-byte expanded form and
// the 32-byte seed form are accepted.
func DecodePrivate(s string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, fmt.Errorf("decode private key: unexpected length %d", len(raw))
	}
}

// SignDigest signs a precomputed digest and returns a std base64 signature.
func SignDigest(priv ed25519.PrivateKey, digest []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, digest))
}

// VerifyDigest checks a base64 signature over a precomputed digest. A
// malformed signature is simply a failed verification, not an error.
func VerifyDigest(pub ed25519.PublicKey, digest []byte, signature string) bool {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, digest, sig)
}
