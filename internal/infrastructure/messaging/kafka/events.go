package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

const (
	TopicLibraryGenerated    = "library.generated"
	TopicLibraryRequested    = "library.requested"
	TopicLibraryRequestedDLQ = "library.requested.dlq"

	EventTypeLibraryGenerated = "library.generated"
	EventTypeLibraryRequested = "library.requested"

	eventSource = "smilescombine"
)

// EventEnvelope wraps every payload on the library topics.
type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Source:    eventSource,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// ToMessage encodes the envelope for topic, keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			"event_type": e.EventType,
			"event_id":   e.EventID,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// DecodeEnvelope parses a consumed message and checks its event type.
func DecodeEnvelope(msg *Message, eventType string) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event envelope")
	}
	if env.EventType != eventType {
		return nil, errors.Newf(errors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	return &env, nil
}

// LibraryEventPublisher publishes library events through a Producer.
type LibraryEventPublisher struct {
	producer Publisher
	topic    string
	logger   logging.Logger
}

// NewLibraryEventPublisher publishes generated events on topic, or on
// TopicLibraryGenerated when topic is empty.
func NewLibraryEventPublisher(p Publisher, topic string, logger logging.Logger) *LibraryEventPublisher {
	if topic == "" {
		topic = TopicLibraryGenerated
	}
	return &LibraryEventPublisher{producer: p, topic: topic, logger: logger}
}

// PublishGenerated implements library.EventPublisher.  Events are keyed by
// run ID.
func (p *LibraryEventPublisher) PublishGenerated(ctx context.Context, evt *library.GeneratedEvent) error {
	env, err := NewEventEnvelope(EventTypeLibraryGenerated, evt)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic, evt.RunID)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("Library event published",
		logging.String("run_id", evt.RunID),
		logging.String("event_id", env.EventID))
	return nil
}

// PublishRequested enqueues a generation request.  An empty topic means
// TopicLibraryRequested.
func PublishRequested(ctx context.Context, p Publisher, topic string, req *library.RequestedEvent) error {
	if req == nil {
		return errors.InvalidParam("request is required")
	}
	if topic == "" {
		topic = TopicLibraryRequested
	}
	env, err := NewEventEnvelope(EventTypeLibraryRequested, req)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(topic, req.Name)
	if err != nil {
		return err
	}
	return p.Publish(ctx, msg)
}

// RequestEnqueuer binds PublishRequested to one producer and topic.
type RequestEnqueuer struct {
	publisher Publisher
	topic     string
}

func NewRequestEnqueuer(p Publisher, topic string) *RequestEnqueuer {
	return &RequestEnqueuer{publisher: p, topic: topic}
}

func (e *RequestEnqueuer) Enqueue(ctx context.Context, req *library.RequestedEvent) error {
	return PublishRequested(ctx, e.publisher, e.topic, req)
}

// RequestHandler adapts fn to a MessageHandler for TopicLibraryRequested.
// Undecodable messages are logged and acknowledged; retrying cannot fix them.
func RequestHandler(fn func(ctx context.Context, req *library.RequestedEvent) error, logger logging.Logger) MessageHandler {
	return func(ctx context.Context, msg *Message) error {
		env, err := DecodeEnvelope(msg, EventTypeLibraryRequested)
		if err != nil {
			logger.Warn("Dropping malformed library request",
				logging.Int64("offset", msg.Offset), logging.Err(err))
			return nil
		}
		var req library.RequestedEvent
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			logger.Warn("Dropping malformed library request payload",
				logging.String("event_id", env.EventID), logging.Err(err))
			return nil
		}
		return fn(ctx, &req)
	}
}

var _ library.EventPublisher = (*LibraryEventPublisher)(nil)

//Personal.AI order the ending
