// Package devnet is an in-process ledger used for development and tests. It
// mimics the account and consensus-topic surface of a real ledger network:
// sequential 0.0.N account ids, an operator account that funds new accounts,
// and ordered per-topic message logs with receipts.
package devnet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"credanchor/internal/ledger"
	"credanchor/pkg/platform/sentinel"
)

const (
	// OperatorAccountID is pre-funded at construction, like a testnet
	// operator account.
	OperatorAccountID = "0.0.2"

	firstUserAccount = 1001
)

type account struct {
	publicKey string
	balance   uint64
}

type topicMessage struct {
	payload   []byte
	timestamp time.Time
}

// Ledger implements ledger.Client entirely in memory. Safe for concurrent
// use; consensus order within a topic is the lock acquisition order.
type Ledger struct {
	mu          sync.Mutex
	accounts    map[string]*account
	topics      map[string][]topicMessage
	nextAccount int
	latency     time.Duration

	// FailSubmits forces non-success receipts; FailCreates rejects account
	// creation. Both exist for failure-path tests.
	FailSubmits bool
	FailCreates bool
}

// New returns a devnet ledger with a funded operator account.
func New(operatorBalance uint64) *Ledger {
	return &Ledger{
		accounts: map[string]*account{
			OperatorAccountID: {balance: operatorBalance},
		},
		topics:      make(map[string][]topicMessage),
		nextAccount: firstUserAccount,
	}
}

// WithLatency makes every call sleep, to mimic real network round trips in
// demos.
func (l *Ledger) WithLatency(d time.Duration) *Ledger {
	l.latency = d
	return l
}

func (l *Ledger) CreateAccount(ctx context.Context, publicKey string, initialBalance uint64) (ledger.AccountInfo, error) {
	if err := l.pause(ctx); err != nil {
		return ledger.AccountInfo{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailCreates {
		return ledger.AccountInfo{}, fmt.Errorf("devnet: account creation rejected: %w", sentinel.ErrUnavailable)
	}
	operator := l.accounts[OperatorAccountID]
	if operator.balance < initialBalance {
		return ledger.AccountInfo{}, fmt.Errorf("devnet: insufficient operator balance %d < %d", operator.balance, initialBalance)
	}
	operator.balance -= initialBalance

	accountID := fmt.Sprintf("0.0.%d", l.nextAccount)
	l.nextAccount++
	l.accounts[accountID] = &account{publicKey: publicKey, balance: initialBalance}

	return ledger.AccountInfo{AccountID: accountID, PublicKey: publicKey, Balance: initialBalance}, nil
}

func (l *Ledger) AccountInfo(ctx context.Context, accountID string) (ledger.AccountInfo, error) {
	if err := l.pause(ctx); err != nil {
		return ledger.AccountInfo{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[accountID]
	if !ok {
		return ledger.AccountInfo{}, fmt.Errorf("devnet: account %s: %w", accountID, sentinel.ErrNotFound)
	}
	return ledger.AccountInfo{AccountID: accountID, PublicKey: acc.publicKey, Balance: acc.balance}, nil
}

func (l *Ledger) SubmitMessage(ctx context.Context, topic string, message []byte) (ledger.MessageReceipt, error) {
	if err := l.pause(ctx); err != nil {
		return ledger.MessageReceipt{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.FailSubmits {
		return ledger.MessageReceipt{Status: ledger.StatusFailed, Topic: topic, Timestamp: now}, nil
	}
	l.topics[topic] = append(l.topics[topic], topicMessage{payload: append([]byte(nil), message...), timestamp: now})
	return ledger.MessageReceipt{
		Status:    ledger.StatusSuccess,
		Topic:     topic,
		Sequence:  int64(len(l.topics[topic]) - 1),
		Timestamp: now,
	}, nil
}

// TopicLen reports how many messages a topic holds. Test hook.
func (l *Ledger) TopicLen(topic string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.topics[topic])
}

func (l *Ledger) pause(ctx context.Context) error {
	if l.latency == 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(l.latency):
		return nil
	}
}
