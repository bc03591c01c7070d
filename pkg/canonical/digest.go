package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 fingerprints v: canonical bytes hashed with SHA-256. Returns the raw
// digest (the signature input) and its lowercase hex form (the fingerprint
// embedded in records and payloads).
func SHA256(v any) ([]byte, string, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(data)
	return sum[:], hex.EncodeToString(sum[:]), nil
}
