package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/agroclim/yield-emulator/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	ts := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	msg := kafkago.Message{
		Topic:     "yield-evaluation-requests",
		Partition: 2,
		Offset:    42,
		Key:       []byte("maize-abc"),
		Value:     []byte(`{"crop":"maize"}`),
		Time:      ts,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("batch-job")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, "yield-evaluation-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, []byte("maize-abc"), raw.Key)
	assert.Equal(t, []byte(`{"crop":"maize"}`), raw.Value)
	assert.Equal(t, ts, raw.Timestamp)
	assert.Equal(t, map[string]string{"source": "batch-job"}, raw.Headers)
	assert.Nil(t, raw.Commit)
}

func TestMapMessageToRawEvent_NoHeaders(t *testing.T) {
	raw := mapMessageToRawEvent(kafkago.Message{Value: []byte("{}")})
	assert.Empty(t, raw.Headers)
	assert.NotNil(t, raw.Headers)
}

func TestMapOutputEventToMessage(t *testing.T) {
	ev := domain.OutputEvent{
		Key:   []byte("maize-abc"),
		Value: []byte(`{"anomaly":-0.12}`),
		Headers: map[string]string{
			"processed_at": "2026-03-14T09:00:00Z",
			"crop":         "maize",
		},
	}

	msg := mapOutputEventToMessage(ev)

	assert.Equal(t, []byte("maize-abc"), msg.Key)
	assert.Equal(t, []byte(`{"anomaly":-0.12}`), msg.Value)

	// Header order is deterministic: sorted by key.
	assert.Equal(t, []kafkago.Header{
		{Key: "crop", Value: []byte("maize")},
		{Key: "processed_at", Value: []byte("2026-03-14T09:00:00Z")},
	}, msg.Headers)
}

func TestMapOutputEventToMessage_NoHeaders(t *testing.T) {
	msg := mapOutputEventToMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("v")})
	assert.Empty(t, msg.Headers)
}
