package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps blobs in a hash and their insertion order in a sorted
// set, both namespaced:
//
//	voiceice:{ns}:blobs  hash   name -> bytes
//	voiceice:{ns}:order  zset   name scored by insertion time (µs)
type RedisStore struct {
	rdb       *redis.Client
	namespace string

	mu        sync.Mutex
	lastScore int64
}

// NewRedisStore connects to Redis with opts. namespace must not be empty.
func NewRedisStore(opts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &RedisStore{rdb: redis.NewClient(opts), namespace: namespace}, nil
}

// BlobsKey returns the hash key for namespace.
func BlobsKey(namespace string) string {
	return fmt.Sprintf("voiceice:%s:blobs", namespace)
}

// OrderKey returns the sorted-set key for namespace.
func OrderKey(namespace string) string {
	return fmt.Sprintf("voiceice:%s:order", namespace)
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// nextScore is strictly increasing within this process. Microseconds
// keep the score exact as a float64.
func (s *RedisStore) nextScore() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	score := max(time.Now().UnixMicro(), s.lastScore+1)
	s.lastScore = score

	return score
}

// Put writes data and moves name to the end of the order.
func (s *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	score := s.nextScore()

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, BlobsKey(s.namespace), name, data)
		pipe.ZAdd(ctx, OrderKey(s.namespace), redis.Z{Score: float64(score), Member: name})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write blob to Redis: %w", err)
	}

	return nil
}

// Get reads name.
func (s *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := s.rdb.HGet(ctx, BlobsKey(s.namespace), name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read blob from Redis: %w", err)
	}

	return data, nil
}

// Delete removes name from both keys.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, BlobsKey(s.namespace), name)
		pipe.ZRem(ctx, OrderKey(s.namespace), name)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete blob from Redis: %w", err)
	}

	return nil
}

// List returns names in insertion order.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.rdb.ZRange(ctx, OrderKey(s.namespace), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs from Redis: %w", err)
	}

	return names, nil
}
