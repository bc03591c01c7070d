// Package contentstore is the content-addressed storage layer. Documents go
// in as canonical JSON bytes and come back out verified against their
// reference, so a reference can be trusted to name exactly one byte sequence.
package contentstore

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Store is a minimal content-addressed storage contract.
//
// - Put MUST be idempotent: identical bytes yield the identical reference.
// - Stored objects MUST be immutable.
// - Get MUST return sentinel.ErrNotFound (wrapped) when the reference is
//   absent, and MUST verify the fetched bytes hash back to the reference.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, reference string) ([]byte, error)
	Has(ctx context.Context, reference string) bool
}

// Reference returns the CIDv1 (raw + sha2-256) string for data. This is the
// single place the reference format is defined; every backend validates
// against it.
func Reference(data []byte) (string, error) {
	id, err := referenceCID(data)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func referenceCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// ParseReference decodes and validates a reference string.
func ParseReference(reference string) (cid.Cid, error) {
	return cid.Decode(reference)
}
