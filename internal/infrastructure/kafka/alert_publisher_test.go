package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

func sampleEvent() inventory.SafetyAlertEvent {
	return inventory.SafetyAlertEvent{
		MovementID:      "mov-1",
		ItemID:          "item-1",
		LocationID:      "store-1",
		Quantity:        7,
		SafetyThreshold: 10,
		OccurredAt:      time.Date(2026, 1, 24, 10, 0, 0, 0, time.UTC),
	}
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestAlertPublisher_EnviaJSONConClaveYHeaders(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})
	pub := NewAlertPublisherWithProducer(producer, "inventory.alerts", zerolog.Nop())

	require.NoError(t, pub.PublishSafetyAlert(context.Background(), sampleEvent()))
	require.NoError(t, pub.Close())

	require.NotNil(t, sent)
	assert.Equal(t, "inventory.alerts", sent.Topic)
	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "item-1:store-1", string(key))

	value, err := sent.Value.Encode()
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(value, &got))
	assert.Equal(t, "mov-1", got["movementId"])
	assert.EqualValues(t, 7, got["quantity"])
	assert.EqualValues(t, 10, got["safetyThreshold"])

	require.Len(t, sent.Headers, 2)
	assert.Equal(t, EventTypeSafetyAlert, string(sent.Headers[0].Value))
}

func TestAlertPublisher_PropagaErrorDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	pub := NewAlertPublisherWithProducer(producer, "inventory.alerts", zerolog.Nop())

	err := pub.PublishSafetyAlert(context.Background(), sampleEvent())
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	require.NoError(t, pub.Close())
}

func TestAlertPublisher_ContextoCancelado(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	pub := NewAlertPublisherWithProducer(producer, "inventory.alerts", zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pub.PublishSafetyAlert(ctx, sampleEvent()), context.Canceled)
	require.NoError(t, pub.Close())
}

func TestLogPublisher_EscribeAlerta(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, pub.PublishSafetyAlert(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"safety_threshold":10`)
}
