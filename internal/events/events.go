// Package events announces planner changes to other processes over NATS
// subjects and redis pub/sub channels.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Entity names used in subjects.
const (
	EntitySemester   = "semester"
	EntityCourse     = "course"
	EntityAssignment = "assignment"
)

// Actions used in subjects.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Event describes one change to a user's planner.
type Event struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher announces events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Broker publishes to a NATS subject and a redis channel derived from the
// prefix, entity and action. Either transport may be nil.
type Broker struct {
	nats   *nats.Conn
	redis  *redis.Client
	prefix string
	nodeID string
	now    func() time.Time
	logger zerolog.Logger
}

// NewBroker builds a broker. An empty prefix defaults to "planner".
func NewBroker(natsConn *nats.Conn, redisClient *redis.Client, prefix string, logger zerolog.Logger) *Broker {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".:")
	if prefix == "" {
		prefix = "planner"
	}
	return &Broker{
		nats:   natsConn,
		redis:  redisClient,
		prefix: prefix,
		nodeID: uuid.NewString(),
		now:    time.Now,
		logger: logger.With().Str("component", "event_broker").Logger(),
	}
}

// Subject returns the NATS subject of an entity action, e.g. "planner.course.created".
func (b *Broker) Subject(entity, action string) string {
	return b.prefix + "." + entity + "." + action
}

// Channel returns the redis channel of an entity action, e.g. "planner:course:created".
func (b *Broker) Channel(entity, action string) string {
	return b.prefix + ":" + entity + ":" + action
}

// Publish implements Publisher. Missing ids and timestamps are filled in.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Source == "" {
		event.Source = b.nodeID
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = b.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if b.redis != nil {
		if err := b.redis.Publish(ctx, b.Channel(event.Entity, event.Action), payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil {
		if err := b.nats.Publish(b.Subject(event.Entity, event.Action), payload); err != nil {
			return err
		}
	}

	b.logger.Debug().
		Str("entity", event.Entity).
		Str("action", event.Action).
		Str("entity_id", event.EntityID).
		Msg("event published")
	return nil
}

// Subscribe delivers events published by other nodes on every NATS subject
// under the prefix until ctx is done. It is a no-op without a NATS connection.
func (b *Broker) Subscribe(ctx context.Context, queue string, handle func(Event)) error {
	if b.nats == nil {
		return nil
	}

	sub, err := b.nats.QueueSubscribe(b.prefix+".>", queue, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			b.logger.Warn().Err(err).Msg("invalid event payload")
			return
		}
		if event.Source == b.nodeID {
			return
		}
		handle(event)
	})
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain event subscription")
		}
	}()
	return nil
}
