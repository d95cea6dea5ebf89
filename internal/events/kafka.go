package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// envelope is the JSON value written for every event.
type envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Writer limits. Writes run on the request path and must stay bounded.
const (
	writerBatchTimeout = 5 * time.Millisecond
	writerWriteTimeout = 2 * time.Second
	writerMaxAttempts  = 2
	writerBackoffMax   = 100 * time.Millisecond
)

// KafkaPublisher writes every event to a single topic through a lazily
// created writer.
type KafkaPublisher struct {
	brokers   []string
	topic     string
	newWriter func(brokers []string, topic string) messageWriter

	mu     sync.Mutex
	writer messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher writing to topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		brokers:   brokers,
		topic:     topic,
		newWriter: newKafkaWriter,
	}
}

func newKafkaWriter(brokers []string, topic string) messageWriter {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
		Async:                  false,
		BatchSize:              1,
		BatchTimeout:           writerBatchTimeout,
		WriteTimeout:           writerWriteTimeout,
		MaxAttempts:            writerMaxAttempts,
		WriteBackoffMax:        writerBackoffMax,
	}
}

// Publish encodes the event and writes it synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	return p.getWriter().WriteMessages(ctx, msg)
}

func encode(event Event) (kafka.Message, error) {
	body, err := json.Marshal(envelope{
		EventID:    event.ID,
		EventType:  event.Type,
		OccurredAt: event.OccurredAt,
		Payload:    event.Payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}, nil
}

func (p *KafkaPublisher) getWriter() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = p.newWriter(p.brokers, p.topic)
	}
	return p.writer
}

// Close releases the writer, if one was created.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
