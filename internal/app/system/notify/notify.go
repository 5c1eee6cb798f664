// internal/app/system/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event types published on the help-request channel.
const (
	TypeRequestCreated       = "help.request.created"
	TypeRequestAssigned      = "help.request.assigned"
	TypeRequestStatusChanged = "help.request.status_changed"
	TypeRequestFulfilled     = "help.request.fulfilled"
)

// DefaultChannel is the Redis pub/sub channel used when none is configured.
const DefaultChannel = "artisanbridge:help"

// Event is a help-request lifecycle notification. Subscribers (the SMS
// sender, dashboards) decide what to do with it.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	RequestID  string    `json:"requestId"`
	SellerID   string    `json:"sellerId,omitempty"`
	NGOUserID  string    `json:"ngoUserId,omitempty"`
	Status     string    `json:"status,omitempty"`
	PrevStatus string    `json:"prevStatus,omitempty"`
	Title      string    `json:"title,omitempty"`
	At         time.Time `json:"at"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(typ string, requestID primitive.ObjectID) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		RequestID: requestID.Hex(),
		At:        time.Now().UTC(),
	}
}

// Notifier publishes help-request events.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

// NewRedisPublisher returns a publisher on channel (DefaultChannel if empty).
func NewRedisPublisher(rdb *redis.Client, channel string, log *zap.Logger) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel, log: log}
}

// Channel returns the channel events are published on.
func (p *RedisPublisher) Channel() string { return p.channel }

// Publish encodes e and publishes it. The number of receivers is logged at
// debug level; zero receivers is not an error.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	n, err := p.rdb.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return err
	}
	p.log.Debug("help event published",
		zap.String("type", e.Type),
		zap.String("request_id", e.RequestID),
		zap.Int64("receivers", n))
	return nil
}
