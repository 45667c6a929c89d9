package events

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// rosterWriter is the slice of kafka.Writer the publisher needs.
type rosterWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

type schemaRegistrar interface {
	RosterSchemaID(context.Context) (int, error)
}

// KafkaPublisher delivers roster events to the roster topic. The service only
// ever emits RosterChanged, so the publisher owns a single writer and a single
// schema ID rather than a per-topic pool.
type KafkaPublisher struct {
	writer   rosterWriter
	registry schemaRegistrar

	mu       sync.Mutex
	schemaID int
	resolved bool
}

// NewKafkaPublisher constructs a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, registry schemaRegistrar, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	return &KafkaPublisher{writer: writer, registry: registry}
}

// PublishSignup implements domain.Publisher.
func (p *KafkaPublisher) PublishSignup(ctx context.Context, activityName, email string) error {
	return p.publish(ctx, TypeSignup, "signup", activityName, email)
}

// PublishUnregister implements domain.Publisher.
func (p *KafkaPublisher) PublishUnregister(ctx context.Context, activityName, email string) error {
	return p.publish(ctx, TypeUnregister, "unregister", activityName, email)
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType, action, activityName, email string) error {
	event := RosterChanged{
		EventID:    uuid.NewString(),
		Activity:   activityName,
		Email:      email,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	schemaID, err := p.rosterSchemaID(ctx)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		// Partition by activity so roster changes stay ordered per activity.
		Key:   []byte(activityName),
		Value: encodeWireFormat(schemaID, payload),
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

// rosterSchemaID resolves the RosterChanged schema ID once and reuses it for
// the lifetime of the publisher. Resolution failures are retried on the next
// publish rather than cached.
func (p *KafkaPublisher) rosterSchemaID(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved {
		return p.schemaID, nil
	}

	id, err := p.registry.RosterSchemaID(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve roster schema: %w", err)
	}
	p.schemaID = id
	p.resolved = true
	return id, nil
}

// encodeWireFormat prefixes the payload with the Confluent magic byte and schema ID.
func encodeWireFormat(schemaID int, payload []byte) []byte {
	out := make([]byte, 5+len(payload))
	out[0] = 0
	binary.BigEndian.PutUint32(out[1:5], uint32(schemaID))
	copy(out[5:], payload)
	return out
}
