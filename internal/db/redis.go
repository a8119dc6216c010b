package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// batchTTL bounds how long finished batch progress hashes linger.
const batchTTL = 24 * time.Hour

// RedisStore wraps a redis client and context for batch progress tracking.
// Long imports publish running counters here so operators can watch them
// through the status API without hitting Postgres.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// StartBatch records the start of a processing batch and applies the TTL.
func (r *RedisStore) StartBatch(batchID, category string) error {
	key := batchKey(batchID)
	if err := r.Client.HSet(r.Ctx, key,
		"category", category,
		"started_at", time.Now().UTC().Format(time.RFC3339),
	).Err(); err != nil {
		return err
	}
	return r.Client.Expire(r.Ctx, key, batchTTL).Err()
}

// IncrementBatchCounter bumps one running counter on a batch hash.
func (r *RedisStore) IncrementBatchCounter(batchID, counter string) error {
	return r.Client.HIncrBy(r.Ctx, batchKey(batchID), counter, 1).Err()
}

// BatchProgress returns the current counters for a batch.
func (r *RedisStore) BatchProgress(batchID string) (map[string]string, error) {
	vals, err := r.Client.HGetAll(r.Ctx, batchKey(batchID)).Result()
	if err != nil {
		return nil, err
	}
	return vals, nil
}

// FinishBatch stamps the completion time on a batch hash.
func (r *RedisStore) FinishBatch(batchID string) error {
	return r.Client.HSet(r.Ctx, batchKey(batchID),
		"finished_at", time.Now().UTC().Format(time.RFC3339)).Err()
}

func batchKey(batchID string) string {
	return fmt.Sprintf("batch:%s", batchID)
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
