package realtime

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

// UserChannel is the pub/sub channel carrying one user's notifications.
func UserChannel(userID uuid.UUID) string {
	return channelPrefix + userID.String()
}

// NewRedis creates a new Redis client
func NewRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	log.Printf("Redis client created (addr: %s)\n", addr)
	return rdb
}

// RedisPublisher fans notifications out through Redis so every API instance
// can reach the sockets it holds.
type RedisPublisher struct {
	RDB *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, userID uuid.UUID, payload []byte) error {
	return p.RDB.Publish(ctx, UserChannel(userID), payload).Err()
}

// HubPublisher delivers straight to the local hub, for single-instance setups.
type HubPublisher struct {
	Hub *Hub
}

func (p *HubPublisher) Publish(_ context.Context, userID uuid.UUID, payload []byte) error {
	p.Hub.Deliver(userID, payload)
	return nil
}

// Relay subscribes to every user channel and hands messages to the local hub.
func Relay(ctx context.Context, rdb *redis.Client, hub *Hub) {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			userID, err := ParseUserChannel(msg.Channel)
			if err != nil {
				log.Printf("[relay] ignoring channel %q: %v", msg.Channel, err)
				continue
			}
			hub.Deliver(userID, []byte(msg.Payload))
		}
	}
}

func ParseUserChannel(channel string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(channel, channelPrefix))
}
