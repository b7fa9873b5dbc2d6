package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKey stores the active login session.
const sessionKey = "socialclock:session"

// sessionTTL bounds how long a login stays active without renewal.
const sessionTTL = 30 * 24 * time.Hour

// Redis keeps the active identity in a Redis session so logins survive
// server restarts.
type Redis struct {
	client   *redis.Client
	fallback Identity
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// NewRedis creates a Redis-backed provider with the configured fallback.
func NewRedis(client *redis.Client, fallback Identity) *Redis {
	return &Redis{
		client:   client,
		fallback: fallback,
	}
}

// Login stores the identity as the active session.
func (r *Redis) Login(ctx context.Context, id Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKey, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	return nil
}

// Logout deletes the active session.
func (r *Redis) Logout(ctx context.Context) error {
	if err := r.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// CurrentIdentity reads the active session, falling back when none exists.
func (r *Redis) CurrentIdentity(ctx context.Context) (Identity, error) {
	data, err := r.client.Get(ctx, sessionKey).Result()
	if errors.Is(err, redis.Nil) {
		return r.fallback, nil
	}

	if err != nil {
		return Identity{}, fmt.Errorf("read session: %w", err)
	}

	var id Identity
	if err := json.Unmarshal([]byte(data), &id); err != nil {
		return Identity{}, fmt.Errorf("unmarshal session: %w", err)
	}

	return id, nil
}
