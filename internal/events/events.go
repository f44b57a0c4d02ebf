package events

import (
	"bytes"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/umalmyha/contacts-api/internal/model"
	"github.com/vmihailenco/msgpack/v5"
)

// Kind is a type of contact change
type Kind string

const (
	// KindCreated is published when contact is created
	KindCreated Kind = "created"
	// KindUpdated is published when contact fields are replaced
	KindUpdated Kind = "updated"
	// KindDeleted is published when contact is removed
	KindDeleted Kind = "deleted"
)

// ContactEvent describes single contact change
type ContactEvent struct {
	Kind      Kind           `json:"kind"`
	ContactID string         `json:"contactId"`
	Contact   *model.Contact `json:"contact,omitempty"`
	At        time.Time      `json:"at"`
}

// NewContactEvent builds event for contact, contact snapshot is omitted for deletion
func NewContactEvent(kind Kind, c *model.Contact, at time.Time) *ContactEvent {
	e := &ContactEvent{Kind: kind, ContactID: c.ID, At: at.UTC()}
	if kind != KindDeleted {
		e.Contact = c
	}
	return e
}

// Publisher publishes contact changes
type Publisher interface {
	Publish(context.Context, *ContactEvent) error
}

type noopPublisher struct{}

// NewNoopPublisher builds Publisher which drops all events
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *ContactEvent) error {
	return nil
}

type redisStreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStreamPublisher builds Publisher appending events to redis stream
func NewRedisStreamPublisher(client redis.Cmdable, stream string, maxLen int64) Publisher {
	return &redisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (p *redisStreamPublisher) Publish(ctx context.Context, e *ContactEvent) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]any{
			"kind":    string(e.Kind),
			"payload": payload,
		},
	}).Err()
}

// Encode encodes event as msgpack using json field names
func Encode(e *ContactEvent) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")

	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes event produced by Encode
func Decode(b []byte) (*ContactEvent, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")

	var e ContactEvent
	if err := dec.Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
