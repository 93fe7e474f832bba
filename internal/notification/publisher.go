package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bunkmate/bunkmate-backend/internal/alert"
	"github.com/bunkmate/bunkmate-backend/internal/config"
)

// Message is what subscribers receive for each zone notification.
type Message struct {
	alert.Event
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewMessage decorates an event with its display text.
func NewMessage(ev alert.Event) Message {
	return Message{Event: ev, Title: ev.Title(), Message: ev.Message()}
}

// Publisher fans zone notifications out to every connection of a user over Redis Pub/Sub.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish sends ev on the user's notification channel.
func (p *Publisher) Publish(ctx context.Context, userID string, ev alert.Event) error {
	payload, err := json.Marshal(NewMessage(ev))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.rdb.Publish(ctx, config.CacheKey.UserNotificationChannel(userID), payload).Err()
}

// Subscribe opens a subscription on the user's notification channel.
// The caller must Close it.
func (p *Publisher) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return p.rdb.Subscribe(ctx, config.CacheKey.UserNotificationChannel(userID))
}
