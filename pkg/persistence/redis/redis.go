// Package redis stores session snapshots in Redis, one key per client kind.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/persistence"
)

const keyPrefix = "decmed:session:"

// Store implements persistence.SessionStore on Redis. A zero ttl keeps
// snapshots until cleared.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore connects using a redis:// URL.
func NewStore(url string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return NewStoreWithClient(redis.NewClient(opts), ttl), nil
}

func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(client models.ClientKind) string {
	return keyPrefix + string(client)
}

func (s *Store) Load(ctx context.Context, client models.ClientKind) (*persistence.Snapshot, error) {
	data, err := s.client.Get(ctx, key(client)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.NewSessionError("Load", client, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("Load", client, err)
	}

	var snapshot persistence.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, persistence.NewSessionError("Load", client, fmt.Errorf("%w: %w", persistence.ErrCorruptSession, err))
	}

	return &snapshot, nil
}

func (s *Store) Save(ctx context.Context, snapshot *persistence.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	if err := s.client.Set(ctx, key(snapshot.Client), data, s.ttl).Err(); err != nil {
		return persistence.NewSessionError("Save", snapshot.Client, err)
	}

	return nil
}

func (s *Store) Clear(ctx context.Context, client models.ClientKind) error {
	if err := s.client.Del(ctx, key(client)).Err(); err != nil {
		return persistence.NewSessionError("Clear", client, err)
	}

	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
