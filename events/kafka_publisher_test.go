package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/party-bets/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEntry() *models.Entry {
	return &models.Entry{
		ID:          7,
		Applicant:   "Grace",
		CreatedAt:   time.Date(2026, 1, 23, 19, 0, 0, 0, time.UTC),
		PapaMembers: []models.Member{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}, {ID: 5}},
		LineMembers: [models.LineSlotCount]*models.Member{{ID: 6}, {ID: 1}, {ID: 2}},
	}
}

func TestNewEntrySubmitted(t *testing.T) {
	e := NewEntrySubmitted(sampleEntry())

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, int64(7), e.EntryID)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, e.PapaMemberIDs)
	assert.Equal(t, []int64{6, 1, 2}, e.LineMemberIDs)
}

func TestKafkaPublisher_PublishEntrySubmitted(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)
	event := NewEntrySubmitted(sampleEntry())

	require.NoError(t, p.PublishEntrySubmitted(context.Background(), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "7", string(msg.Key))

	var decoded EntrySubmitted
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "Grace", decoded.Applicant)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := NewKafkaPublisher(&recordingWriter{err: errors.New("leader not available")})

	err := p.PublishEntrySubmitted(context.Background(), NewEntrySubmitted(sampleEntry()))
	assert.ErrorContains(t, err, "failed to publish entry 7")
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "entries.submitted")
	defer w.Close()

	assert.Equal(t, "entries.submitted", w.Topic)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout, "a single event must not wait for a full batch")
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.LessOrEqual(t, w.WriteTimeout, 2*time.Second)
}
