package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Message struct {
	ID          string      `json:"id"`
	Body        []byte      `json:"content"`
	Payload     interface{} `json:"payload"`
	Headers     amqp.Table  `json:"headers,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	ContentType string      `json:"content_type"`
}

// Event is the envelope used for domain events such as invoice.created.
type Event struct {
	Type string          `json:"type"`
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

func NewMessageID() (string, error) {
	gid, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("msg_%s_%d", gid, time.Now().Unix()), nil
}

func NewMessage(payload interface{}, headers *amqp.Table) (*Message, error) {
	id, err := NewMessageID()
	if err != nil {
		return nil, err
	}

	var body []byte
	var contentType string
	switch v := payload.(type) {
	case string:
		body = []byte(v)
		contentType = "text/plain"
	case []byte:
		body = v
		contentType = "application/octet-stream"
	default:
		body, err = json.Marshal(v)
		if err != nil {
			return nil, err
		}
		contentType = "application/json"
	}

	if headers == nil {
		headers = &amqp.Table{}
	}

	return &Message{
		ID:          id,
		Body:        body,
		Payload:     payload,
		Headers:     *headers,
		Timestamp:   time.Now(),
		ContentType: contentType,
	}, nil
}

// NewEventMessage wraps data in an Event envelope of the given type.
func NewEventMessage(eventType string, data interface{}) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	id, err := NewMessageID()
	if err != nil {
		return nil, err
	}

	msg, err := NewMessage(Event{Type: eventType, ID: id, Data: raw}, &amqp.Table{"type": eventType})
	if err != nil {
		return nil, err
	}
	msg.ID = id
	return msg, nil
}

func (m *Message) GeneratePayload() *amqp.Publishing {
	m.Headers["id"] = m.ID

	return &amqp.Publishing{
		ContentType:  m.ContentType,
		Body:         m.Body,
		MessageId:    m.ID,
		Timestamp:    m.Timestamp,
		DeliveryMode: amqp.Persistent,
		Headers:      m.Headers,
	}
}

// DecodeEvent reads an Event envelope from a delivery body.
func DecodeEvent(body []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, fmt.Errorf("invalid event body: %w", err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("invalid event body: missing type")
	}
	return &e, nil
}
