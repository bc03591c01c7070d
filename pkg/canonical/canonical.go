// Package canonical is the single serialization choke point for everything
// that gets hashed or signed. Fingerprints, content references, and signature
// inputs must all be derived from canonical.Marshal output so that issuer and
// verifier agree byte-for-byte.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal renders v as canonical JSON: object keys sorted lexicographically,
// no insignificant whitespace, struct field order erased. Two values that are
// JSON-equal always canonicalize to identical bytes.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}
	// Round-trip through an untyped value; encoding/json emits map keys in
	// sorted order, which erases struct field ordering.
	var intermediate any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&intermediate); err != nil {
		return nil, fmt.Errorf("canonical: normalize: %w", err)
	}
	out, err := json.Marshal(intermediate)
	if err != nil {
		return nil, fmt.Errorf("canonical: remarshal: %w", err)
	}
	return out, nil
}
