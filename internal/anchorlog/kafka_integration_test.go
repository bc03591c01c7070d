//go:build integration

package anchorlog_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"credanchor/internal/anchorlog"
	"credanchor/internal/domain"
	"credanchor/pkg/testutil/containers"
)

func TestKafkaAnchorLog(t *testing.T) {
	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t).Broker

	log, err := anchorlog.NewKafka([]string{broker}, "anchor-records")
	require.NoError(t, err)
	t.Cleanup(log.Close)
	require.NoError(t, log.EnsureTopic(ctx, 1, 1))
	// Creating the topic again must be a no-op, not an error.
	require.NoError(t, log.EnsureTopic(ctx, 1, 1))

	records := []domain.AnchorRecord{
		{
			ContentReference:    "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq",
			DocumentFingerprint: "aa11",
			SubjectDID:          "did:anchor:0.0.1001",
			RecordType:          domain.RecordTypeDocumentAnchor,
			Timestamp:           time.Now().UTC(),
		},
		{
			ContentReference:    "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy",
			DocumentFingerprint: "bb22",
			SubjectDID:          "did:anchor:0.0.1002",
			RecordType:          domain.RecordTypeDocumentAnchor,
			Timestamp:           time.Now().UTC(),
		},
	}

	var receipts []domain.Receipt
	for _, record := range records {
		receipt, err := log.Append(ctx, record)
		require.NoError(t, err)
		require.True(t, receipt.OK())
		receipts = append(receipts, receipt)
	}

	// Broker-assigned consensus positions are strictly increasing.
	assert.Equal(t, "anchor-records", receipts[0].Log)
	assert.Greater(t, receipts[1].Sequence, receipts[0].Sequence)

	// Read the topic back: records must be keyed by fingerprint and carry the
	// full anchor record as JSON.
	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics("anchor-records"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	var consumed []*kgo.Record
	deadline := time.Now().Add(30 * time.Second)
	for len(consumed) < len(records) && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(r *kgo.Record) {
			consumed = append(consumed, r)
		})
	}
	require.Len(t, consumed, len(records))

	for i, rec := range consumed {
		assert.Equal(t, records[i].DocumentFingerprint, string(rec.Key))

		var got domain.AnchorRecord
		require.NoError(t, json.Unmarshal(rec.Value, &got))
		assert.Equal(t, records[i].ContentReference, got.ContentReference)
		assert.Equal(t, records[i].SubjectDID, got.SubjectDID)
		assert.Equal(t, domain.RecordTypeDocumentAnchor, got.RecordType)
	}
}
