package domain

import "encoding/json"

const (
	CredentialContext = "https://www.w3.org/2018/credentials/v1"
	CredentialType    = "VerifiableCredential"
	ProofType         = "Ed25519Signature2020"
	ProofPurpose      = "assertionMethod"
)

// Payload keys the issuer injects into the credential subject so a verifier
// can cross-check storage and anchor state.
const (
	PayloadKeyContentReference = "contentReference"
	PayloadKeyFingerprint      = "documentFingerprint"
)

// Proof is the signature block attached to a credential. VerificationMethod
// pins the exact published key (`<issuerDID>#key-1`) the signature was made
// with.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod"`
	SignatureValue     string `json:"signatureValue"`
}

// Subject carries the subject DID and the caller document augmented with the
// content reference and document fingerprint.
type Subject struct {
	ID      string         `json:"id"`
	Payload map[string]any `json:"payload"`
}

// Credential is immutable once signed. The proof is computed over the
// canonical serialization of everything except the proof itself.
type Credential struct {
	Context      []string `json:"@context"`
	ID           string   `json:"id"`
	Type         []string `json:"type"`
	Issuer       string   `json:"issuer"`
	IssuanceDate string   `json:"issuanceDate"`
	Subject      Subject  `json:"credentialSubject"`
	Proof        *Proof   `json:"proof,omitempty"`
}

// AsMap renders a credential as the untyped form the verifier operates on.
// Verification works on maps rather than structs so that any field a caller
// tampered with, known to us or not, changes the recomputed fingerprint.
func (c Credential) AsMap() (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
