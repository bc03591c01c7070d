// Package ledger defines the client boundary to the ledger network: account
// creation and lookup for the identity registry, and topic message submission
// with receipts for the anchor log. Implementations live in subpackages so
// services depend only on this interface.
package ledger

import (
	"context"
	"time"
)

// AccountInfo is the ledger's view of one account.
type AccountInfo struct {
	AccountID string
	PublicKey string
	Balance   uint64
}

// MessageReceipt confirms a topic submission. Status must be checked; a
// confirmed non-success receipt means the message is not on the log.
type MessageReceipt struct {
	Status    string
	Topic     string
	Sequence  int64
	Timestamp time.Time
}

const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// Client is the injected, read-mostly connection to the ledger network.
// Implementations must be safe for concurrent use.
type Client interface {
	// CreateAccount registers a new account bound to publicKey, funded with
	// initialBalance from the operator.
	CreateAccount(ctx context.Context, publicKey string, initialBalance uint64) (AccountInfo, error)
	// AccountInfo returns the current state of an account, or
	// sentinel.ErrNotFound when it does not exist.
	AccountInfo(ctx context.Context, accountID string) (AccountInfo, error)
	// SubmitMessage appends an opaque message to a consensus topic and waits
	// for the receipt.
	SubmitMessage(ctx context.Context, topic string, message []byte) (MessageReceipt, error)
}
