//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"dealer/internal/platform/config"
	"dealer/pkg/platform/audit/outbox"
	"dealer/pkg/testutil/containers"
)

func TestProducerPublishesOutboxEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redpanda integration test in short mode")
	}
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	topic := "dealer.audit.test." + uuid.NewString()[:8]
	producer, err := NewProducer(config.KafkaConfig{Brokers: broker.Brokers, AuditTopic: topic})
	require.NoError(t, err)
	defer producer.Close()

	require.NoError(t, producer.EnsureTopic(ctx, 1, 1))
	require.NoError(t, producer.EnsureTopic(ctx, 1, 1), "topic creation must be idempotent")
	require.NoError(t, producer.Health(ctx))

	entry := outbox.Entry{
		ID:            uuid.New(),
		AggregateType: "sale",
		AggregateID:   uuid.NewString(),
		EventType:     "audit.record",
		Payload:       []byte(`{"action":"CREATE"}`),
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, producer.Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, entry.AggregateID, string(got.Key))
	assert.JSONEq(t, string(entry.Payload), string(got.Value))
	headers := map[string]string{}
	for _, h := range got.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "audit.record", headers["event_type"])
	assert.Equal(t, entry.ID.String(), headers["outbox_id"])
}

func TestNewProducerWithoutBrokers(t *testing.T) {
	p, err := NewProducer(config.KafkaConfig{})
	require.NoError(t, err)
	assert.Nil(t, p)
}
