package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cached results between API replicas. Entries are stored
// under "<prefix>:<name>:<md5(params)>" without expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "estately:cache"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) redisKey(key Key) string {
	hash := md5.Sum([]byte(key.Params))
	return fmt.Sprintf("%s:%s:%s", s.prefix, key.Name, hex.EncodeToString(hash[:]))
}

func (s *RedisStore) namePattern(name string) string {
	return fmt.Sprintf("%s:%s:*", s.prefix, name)
}

func (s *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, value []byte) error {
	return s.client.Set(ctx, s.redisKey(key), value, 0).Err()
}

func (s *RedisStore) DeleteName(ctx context.Context, name string) error {
	iter := s.client.Scan(ctx, 0, s.namePattern(name), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", name, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
