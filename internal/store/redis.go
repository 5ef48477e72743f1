package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vancomm/minefield/internal/session"
)

const (
	keyPrefix        = "game:"
	maxUpdateRetries = 8
)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Create(ctx context.Context, s *session.Session) error {
	b, err := s.Bytes()
	if err != nil {
		return fmt.Errorf("could not encode session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, keyPrefix+s.ID, b, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, id string) (*session.Session, error) {
	b, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session.Decode(b)
}

// Update reads, modifies and writes the session inside a WATCH transaction
// and retries when another client touched the key in between.
func (r *Redis) Update(
	ctx context.Context, id string, fn func(*session.Session) error,
) (*session.Session, error) {
	key := keyPrefix + id

	var updated *session.Session
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		s, err := session.Decode(b)
		if err != nil {
			return fmt.Errorf("could not decode session: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
		b, err = s.Bytes()
		if err != nil {
			return fmt.Errorf("could not encode session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = s
		return nil
	}

	for range maxUpdateRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConflict
}

func (r *Redis) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return n, nil
}
