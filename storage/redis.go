package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/minus-twelve/relay/types"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares sessions between processes. Redis expires the keys
// itself, so Cleanup has nothing to do.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(cfg types.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "sess:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisStore) Create(ctx context.Context, session *types.Session) error {
	ttl := time.Until(session.ExpiresAt())
	if ttl <= 0 {
		return errors.New("session: expires_at must be in the future")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(session.ID()), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Save overwrites an existing key only, so a copy read before another
// request deleted the session cannot bring it back. A session already past
// expiry is deleted instead.
func (r *RedisStore) Save(ctx context.Context, session *types.Session) error {
	ttl := time.Until(session.ExpiresAt())
	if ttl <= 0 || session.Destroyed() {
		return r.client.Del(ctx, r.key(session.ID())).Err()
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetXX(ctx, r.key(session.ID()), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*types.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	session := &types.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return session, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) Cleanup(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *RedisStore) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.key("*"), 500).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
