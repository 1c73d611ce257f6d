package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/csemotors/pkg/config"
	redisclient "github.com/angelmondragon/csemotors/pkg/redis"
)

// Kinds of flash message. Views style them differently.
const (
	KindNotice = "notice"
	KindError  = "error"
)

// Message is one queued one-shot notice.
type Message struct {
	Kind string `json:"kind"`
	Text string `json:"message"`
}

// Store persists the per-client queues. Drain returns and clears the queue in one step.
type Store interface {
	Push(ctx context.Context, sessionID string, msgs ...Message) error
	Drain(ctx context.Context, sessionID string) ([]Message, error)
}

type listClient interface {
	PushList(ctx context.Context, key string, ttl time.Duration, values ...string) error
	DrainList(ctx context.Context, key string) ([]string, error)
	FlashKey(sessionID string) string
}

// RedisStore keeps each queue as a Redis list that expires with the flash TTL.
type RedisStore struct {
	client listClient
	ttl    time.Duration
}

// NewRedisStore builds the Redis-backed store.
func NewRedisStore(client *redisclient.Client, cfg config.FlashConfig) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Push appends messages to the queue of sessionID.
func (s *RedisStore) Push(ctx context.Context, sessionID string, msgs ...Message) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("flash session id is required")
	}
	values := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if strings.TrimSpace(msg.Text) == "" {
			continue
		}
		raw, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encode flash message: %w", err)
		}
		values = append(values, string(raw))
	}
	return s.client.PushList(ctx, s.client.FlashKey(sessionID), s.ttl, values...)
}

// Drain returns the queued messages in insertion order and empties the queue.
func (s *RedisStore) Drain(ctx context.Context, sessionID string) ([]Message, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	raw, err := s.client.DrainList(ctx, s.client.FlashKey(sessionID))
	if err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}
