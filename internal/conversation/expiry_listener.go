package conversation

import (
	"context"

	"github.com/redis/go-redis/v9"

	domainevents "consumo_wpp_backend/internal/events"
	"consumo_wpp_backend/platform/events"
	"consumo_wpp_backend/platform/logger"
)

const expiredChannelPattern = "__keyevent@*__:expired"

// ExpiryListener subscribes to Redis keyspace expiry notifications and
// publishes a ConversationExpired event for every conversation key
// that times out. Requires `notify-keyspace-events Ex` on the server.
type ExpiryListener struct {
	client *redis.Client
	bus    events.Bus
	log    *logger.Logger
}

func NewExpiryListener(client *redis.Client, bus events.Bus, log *logger.Logger) *ExpiryListener {
	return &ExpiryListener{client: client, bus: bus, log: log}
}

// Run blocks consuming expiry notifications until ctx is cancelled.
func (l *ExpiryListener) Run(ctx context.Context) error {
	pubsub := l.client.PSubscribe(ctx, expiredChannelPattern)
	defer pubsub.Close()

	l.log.Info("conversation expiry listener started", "pattern", expiredChannelPattern)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			phone := PhoneFromKey(msg.Payload)
			if phone == "" {
				continue
			}
			l.log.Info("conversation expired", "sender", phone)
			l.bus.Publish(ctx, domainevents.NewConversationExpired(phone))
		}
	}
}

// NewExpiryNotifier returns the event handler that tells a sender
// their conversation timed out.
func NewExpiryNotifier(sender MessageSender, log *logger.Logger) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		expired, ok := e.(domainevents.ConversationExpired)
		if !ok {
			return nil
		}
		if err := sender.SendText(ctx, expired.Phone, ExpiryMessage); err != nil {
			log.Error("failed to send expiry message", "error", err, "sender", expired.Phone)
			return err
		}
		return nil
	})
}
