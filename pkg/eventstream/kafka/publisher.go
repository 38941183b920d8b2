// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/skillstream/pkg/eventstream"
	"github.com/papercomputeco/skillstream/pkg/logger"
)

const (
	// EventTypeHeader carries the event type so consumers can route without
	// decoding the value.
	EventTypeHeader = "event_type"

	// SchemaVersionHeader carries the payload schema version.
	SchemaVersionHeader = "schema_version"

	defaultWriteTimeout = 10 * time.Second
	defaultBatchTimeout = 50 * time.Millisecond
)

var (
	ErrNoBrokers = errors.New("kafka: at least one broker is required")
	ErrNoTopic   = errors.New("kafka: topic is required")
)

// Config configures a Kafka Publisher.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string

	// WriteTimeout bounds each PublishTurn call. Defaults to 10s.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes TurnCompletedEvents as JSON, keyed by conversation id so
// turns of one conversation land on one partition in order.
type Publisher struct {
	writer       messageWriter
	topic        string
	writeTimeout time.Duration
	logger       *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher returns a Publisher writing to cfg.Topic on cfg.Brokers.
// Connections are made lazily on the first write.
func NewPublisher(cfg Config) (*Publisher, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, ErrNoTopic
	}

	transport := &kafkago.Transport{ClientID: cfg.ClientID}
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           defaultBatchTimeout,
		AllowAutoTopicCreation: true,
		Transport:              transport,
	}

	return newPublisher(w, cfg), nil
}

func newPublisher(w messageWriter, cfg Config) *Publisher {
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Publisher{
		writer:       w,
		topic:        cfg.Topic,
		writeTimeout: timeout,
		logger:       logger.OrNop(cfg.Logger),
	}
}

// PublishTurn writes one event and waits for the broker acknowledgement.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return eventstream.ErrPublisherClosed
	}

	msg, err := newMessage(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing turn event to %s: %w", p.topic, err)
	}

	p.logger.Debug("turn event published",
		"topic", p.topic,
		"event_id", event.EventID,
		"conversation_id", event.Turn.ConversationID,
	)

	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	return p.writer.Close()
}

func newMessage(event *eventstream.TurnCompletedEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshaling turn event: %w", err)
	}

	key := event.Turn.ConversationID
	if key == "" {
		key = event.EventID
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: EventTypeHeader, Value: []byte(event.EventType)},
			{Key: SchemaVersionHeader, Value: []byte(fmt.Sprint(event.SchemaVersion))},
		},
	}, nil
}
