package anchorlog

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"credanchor/internal/domain"
	"credanchor/pkg/canonical"
)

// Kafka anchors records on a Kafka (or Redpanda) topic. Produces are
// synchronous with acks from all in-sync replicas, so a returned offset is a
// durable consensus position.
//
// Records are keyed by document fingerprint: a retried issue after a partial
// failure lands on the same key instead of accumulating distinct anchors for
// identical content.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects a producer to brokers for the given topic.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("anchor log: connect kafka: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

// EnsureTopic creates the anchor topic if it does not already exist.
func (k *Kafka) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(k.client)
	resps, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, k.topic)
	if err != nil {
		return fmt.Errorf("anchor log: create topic %s: %w", k.topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("anchor log: create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

func (k *Kafka) Append(ctx context.Context, record domain.AnchorRecord) (domain.Receipt, error) {
	message, err := canonical.Marshal(record)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("anchor log: encode record: %w", err)
	}

	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(record.DocumentFingerprint),
		Value: message,
	}
	results := k.client.ProduceSync(ctx, rec)
	if err := results.FirstErr(); err != nil {
		// The broker confirmed a failure; the record is not on the log.
		return domain.Receipt{Status: domain.ReceiptStatusFailed, Log: k.topic}, nil
	}
	produced, err := results.First()
	if err != nil {
		return domain.Receipt{Status: domain.ReceiptStatusFailed, Log: k.topic}, nil
	}
	return domain.Receipt{
		Status:    domain.ReceiptStatusSuccess,
		Log:       k.topic,
		Sequence:  produced.Offset,
		Timestamp: produced.Timestamp,
	}, nil
}

// Close flushes and releases the producer.
func (k *Kafka) Close() {
	k.client.Close()
}
