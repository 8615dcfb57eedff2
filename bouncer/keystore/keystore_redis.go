package keystore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var redisKeyPrefix = "bouncer/"

type RedisKeyStore struct {
	Client *redis.Client
}

var _ KeyStore = (*RedisKeyStore)(nil)

func NewRedisKeyStore(redisURL string) (*RedisKeyStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisKeyStore{Client: rdb}, nil
}

func redisKey(dict, key string) string {
	return redisKeyPrefix + dict + "/" + key
}

func (s *RedisKeyStore) Get(ctx context.Context, dict, key string) ([]byte, error) {
	v, err := s.Client.Get(ctx, redisKey(dict, key)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *RedisKeyStore) Put(ctx context.Context, dict, key string, val []byte) error {
	// records live until explicitly deleted; no TTL at the store level
	return s.Client.Set(ctx, redisKey(dict, key), val, 0).Err()
}

func (s *RedisKeyStore) Delete(ctx context.Context, dict, key string) error {
	return s.Client.Del(ctx, redisKey(dict, key)).Err()
}
