package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mpwr:overrides"

// RedisOverrideRepository keeps override snapshots in Redis so every API
// instance sees the same session. Each session is one JSON value with a TTL.
type RedisOverrideRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOverrideRepository connects to the Redis server at url
func NewRedisOverrideRepository(ctx context.Context, url string, ttl time.Duration) (*RedisOverrideRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisOverrideRepository{client: client, ttl: ttl}, nil
}

// Load returns the session's snapshot, empty when absent or expired
func (r *RedisOverrideRepository) Load(s domain.OverrideSession) (domain.OverrideSnapshot, error) {
	ctx := context.Background()

	val, err := r.client.Get(ctx, sessionKey(s)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.OverrideSnapshot{}, nil
		}
		return nil, fmt.Errorf("failed to load override session: %w", err)
	}
	return decodeSnapshot(val)
}

// Save replaces the session's snapshot and refreshes its TTL
func (r *RedisOverrideRepository) Save(s domain.OverrideSession, snapshot domain.OverrideSnapshot) error {
	ctx := context.Background()

	if len(snapshot) == 0 {
		return r.Delete(s)
	}
	val, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, sessionKey(s), val, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save override session: %w", err)
	}
	return nil
}

// Delete drops the session
func (r *RedisOverrideRepository) Delete(s domain.OverrideSession) error {
	ctx := context.Background()

	if err := r.client.Del(ctx, sessionKey(s)).Err(); err != nil {
		return fmt.Errorf("failed to delete override session: %w", err)
	}
	return nil
}

// Close releases the connection pool
func (r *RedisOverrideRepository) Close() error {
	return r.client.Close()
}

func sessionKey(s domain.OverrideSession) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.CustomerID, s.LoanID)
}

func encodeSnapshot(snapshot domain.OverrideSnapshot) ([]byte, error) {
	val, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode override session: %w", err)
	}
	return val, nil
}

func decodeSnapshot(val []byte) (domain.OverrideSnapshot, error) {
	snapshot := domain.OverrideSnapshot{}
	if err := json.Unmarshal(val, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode override session: %w", err)
	}
	return snapshot, nil
}
