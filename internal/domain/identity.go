package domain

import (
	"fmt"
	"strings"
)

// DIDMethod is the method segment of every DID this service issues and
// resolves. Anything else is rejected before touching the ledger.
const DIDMethod = "anchor"

const didPrefix = "did:" + DIDMethod + ":"

// Identity is the full keypair-holding identity returned at creation time.
// The private key is handed to the caller exactly once and never persisted
// or transmitted by the pipeline afterwards.
type Identity struct {
	AccountID  string `json:"accountId"`
	DID        string `json:"did"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// VerificationMethod identifies one published key of a DID document.
type VerificationMethod struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyHex string `json:"publicKeyHex"`
}

// DIDDocument is the resolvable public view of an identity.
type DIDDocument struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
	AssertionMethod    []string             `json:"assertionMethod"`
}

// IdentityRecord is what Resolve returns: the DID document plus the ledger
// facts a verifier or wallet needs.
type IdentityRecord struct {
	DID       string      `json:"did"`
	AccountID string      `json:"accountId"`
	PublicKey string      `json:"publicKey"`
	Balance   uint64      `json:"balance"`
	Document  DIDDocument `json:"didDocument"`
}

// DIDFromAccount derives the DID bound to a ledger account.
func DIDFromAccount(accountID string) string {
	return didPrefix + accountID
}

// ParseDID extracts the account id from a DID, rejecting anything that is
// not a well-formed did:anchor identifier.
func ParseDID(did string) (string, error) {
	accountID, ok := strings.CutPrefix(did, didPrefix)
	if !ok || accountID == "" {
		return "", fmt.Errorf("not a %q DID: %q", didPrefix, did)
	}
	return accountID, nil
}

// KeyID names the single verification method a did:anchor document exposes.
func KeyID(did string) string {
	return did + "#key-1"
}

// NewDIDDocument builds the one-key DID document for a resolved identity.
func NewDIDDocument(did, publicKeyHex string) DIDDocument {
	keyID := KeyID(did)
	return DIDDocument{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      did,
		VerificationMethod: []VerificationMethod{{
			ID:           keyID,
			Type:         "Ed25519VerificationKey2020",
			Controller:   did,
			PublicKeyHex: publicKeyHex,
		}},
		Authentication:  []string{keyID},
		AssertionMethod: []string{keyID},
	}
}
