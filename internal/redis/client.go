package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"order_manager/internal/apperrors"
)

type Client struct {
	rdb *redis.Client
}

// OperatorSession is the durable part of an admin session. The
// new-order seen set lives with the watcher, not here.
type OperatorSession struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) SetSession(sessionID string, data *OperatorSession, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	return c.rdb.Set(ctx, "admin_session:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetSession(sessionID string) (*OperatorSession, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "admin_session:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session OperatorSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return &session, nil
}

func (c *Client) DeleteSession(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "admin_session:"+sessionID).Err()
}

// TouchSession extends the TTL of an active session.
func (c *Client) TouchSession(sessionID string, ttl time.Duration) error {
	ctx := context.Background()
	return c.rdb.Expire(ctx, "admin_session:"+sessionID, ttl).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
