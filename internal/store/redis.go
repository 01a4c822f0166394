// Locrelay - Real-time Location and Event Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/locrelay

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/locrelay/internal/logging"
	"github.com/tomtom215/locrelay/internal/models"
)

// RedisStore keeps every event as one field of a single hash, so a full
// listing is one HGETALL.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// ConnectRedis parses url, connects and pings within five seconds.
func ConnectRedis(ctx context.Context, url, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStore(rdb, key), nil
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Put(ctx context.Context, ev *models.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.rdb.HSet(ctx, s.key, ev.EventID, data).Err(); err != nil {
		return fmt.Errorf("hset event: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, eventID string) (*models.Event, error) {
	val, err := s.rdb.HGet(ctx, s.key, eventID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hget event: %w", err)
	}
	var ev models.Event
	if err := json.Unmarshal(val, &ev); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", eventID, err)
	}
	return &ev, nil
}

// Delete is HDEL, which already treats a missing field as success.
func (s *RedisStore) Delete(ctx context.Context, eventID string) error {
	if err := s.rdb.HDel(ctx, s.key, eventID).Err(); err != nil {
		return fmt.Errorf("hdel event: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.Event, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall events: %w", err)
	}

	out := make([]models.Event, 0, len(fields))
	for id, raw := range fields {
		var ev models.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			logging.Warn().Err(err).Str("event_id", id).Msg("Skipping undecodable event record")
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) Backend() string { return "redis" }
