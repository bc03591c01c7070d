package anchorlog

import (
	"context"
	"fmt"

	"credanchor/internal/domain"
	"credanchor/internal/ledger"
	"credanchor/pkg/canonical"
)

// LedgerTopic anchors records on a ledger consensus topic through the
// injected ledger client. This is the backend used when no Kafka brokers are
// configured.
type LedgerTopic struct {
	client ledger.Client
	topic  string
}

func NewLedgerTopic(client ledger.Client, topic string) *LedgerTopic {
	return &LedgerTopic{client: client, topic: topic}
}

func (l *LedgerTopic) Append(ctx context.Context, record domain.AnchorRecord) (domain.Receipt, error) {
	message, err := canonical.Marshal(record)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("anchor log: encode record: %w", err)
	}
	receipt, err := l.client.SubmitMessage(ctx, l.topic, message)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("anchor log: submit: %w", err)
	}
	status := domain.ReceiptStatusFailed
	if receipt.Status == ledger.StatusSuccess {
		status = domain.ReceiptStatusSuccess
	}
	return domain.Receipt{
		Status:    status,
		Log:       receipt.Topic,
		Sequence:  receipt.Sequence,
		Timestamp: receipt.Timestamp,
	}, nil
}
