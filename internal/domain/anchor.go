package domain

import "time"

// RecordTypeDocumentAnchor marks anchor records written during credential
// issuance.
const RecordTypeDocumentAnchor = "document-anchor"

// AnchorRecord is written once to the anchor log and never updated. It binds
// a content reference to its document fingerprint and subject at a point in
// time.
type AnchorRecord struct {
	ContentReference    string    `json:"contentReference"`
	DocumentFingerprint string    `json:"documentFingerprint"`
	SubjectDID          string    `json:"subjectDID"`
	RecordType          string    `json:"recordType"`
	Timestamp           time.Time `json:"timestamp"`
}

type ReceiptStatus string

const (
	ReceiptStatusSuccess ReceiptStatus = "SUCCESS"
	ReceiptStatusFailed  ReceiptStatus = "FAILED"
)

// Receipt is the confirmation the anchor log returns for an append. Sequence
// is the log's consensus position (Kafka offset, devnet topic sequence).
// Callers must check OK before trusting the anchor.
type Receipt struct {
	Status    ReceiptStatus `json:"status"`
	Log       string        `json:"log"`
	Sequence  int64         `json:"sequence"`
	Timestamp time.Time     `json:"timestamp"`
}

func (r Receipt) OK() bool { return r.Status == ReceiptStatusSuccess }
