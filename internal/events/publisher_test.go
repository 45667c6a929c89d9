package events

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *stubWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

type stubRegistrar struct {
	id    int
	err   error
	calls int
}

func (r *stubRegistrar) RosterSchemaID(context.Context) (int, error) {
	r.calls++
	return r.id, r.err
}

func newStubPublisher(writer *stubWriter, registrar *stubRegistrar) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, registry: registrar}
}

func TestPublishSignupWritesFramedMessage(t *testing.T) {
	writer := &stubWriter{}
	publisher := newStubPublisher(writer, &stubRegistrar{id: 7})

	err := publisher.PublishSignup(context.Background(), "Chess Club", "a@b.edu")
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, []byte("Chess Club"), msg.Key)

	require.GreaterOrEqual(t, len(msg.Value), 5)
	require.Equal(t, byte(0), msg.Value[0])
	require.Equal(t, uint32(7), binary.BigEndian.Uint32(msg.Value[1:5]))

	var event RosterChanged
	require.NoError(t, json.Unmarshal(msg.Value[5:], &event))
	require.NotEmpty(t, event.EventID)
	require.Equal(t, "Chess Club", event.Activity)
	require.Equal(t, "a@b.edu", event.Email)
	require.Equal(t, "signup", event.Action)
	require.False(t, event.OccurredAt.IsZero())

	var eventType string
	for _, header := range msg.Headers {
		if header.Key == "event_type" {
			eventType = string(header.Value)
		}
	}
	require.Equal(t, TypeSignup, eventType)
}

func TestPublishUnregisterAction(t *testing.T) {
	writer := &stubWriter{}
	publisher := newStubPublisher(writer, &stubRegistrar{id: 3})

	err := publisher.PublishUnregister(context.Background(), "Drama Club", "a@b.edu")
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	var event RosterChanged
	require.NoError(t, json.Unmarshal(writer.messages[0].Value[5:], &event))
	require.Equal(t, "unregister", event.Action)
}

func TestSchemaIDIsResolvedOnce(t *testing.T) {
	writer := &stubWriter{}
	registrar := &stubRegistrar{id: 11}
	publisher := newStubPublisher(writer, registrar)

	ctx := context.Background()
	require.NoError(t, publisher.PublishSignup(ctx, "Chess Club", "a@b.edu"))
	require.NoError(t, publisher.PublishUnregister(ctx, "Chess Club", "a@b.edu"))

	require.Equal(t, 1, registrar.calls)
}

func TestSchemaResolutionFailureIsRetried(t *testing.T) {
	writer := &stubWriter{}
	registrar := &stubRegistrar{err: errors.New("registry down")}
	publisher := newStubPublisher(writer, registrar)

	ctx := context.Background()
	err := publisher.PublishSignup(ctx, "Chess Club", "a@b.edu")
	require.Error(t, err)
	require.Empty(t, writer.messages)

	// Registry recovers; the next publish resolves and delivers.
	registrar.err = nil
	registrar.id = 5
	require.NoError(t, publisher.PublishSignup(ctx, "Chess Club", "a@b.edu"))
	require.Equal(t, 2, registrar.calls)
	require.Len(t, writer.messages, 1)
}

func TestCloseReleasesWriter(t *testing.T) {
	writer := &stubWriter{}
	publisher := newStubPublisher(writer, &stubRegistrar{id: 1})

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)
}
