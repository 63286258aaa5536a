package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists catalog snapshots in Redis so the till boots with current
// prices when the upstream backend is unreachable.
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewStore constructs a snapshot store. A nil client yields a no-op store.
func NewStore(client *redis.Client, key string, ttl time.Duration) *Store {
	if key == "" {
		key = "catalog:snapshot"
	}
	return &Store{client: client, key: key, ttl: ttl}
}

// LoadSnapshot reads the cached product list. It reports whether a snapshot existed.
func (s *Store) LoadSnapshot(ctx context.Context) ([]Product, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, nil
	}
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}

// SaveSnapshot serialises the product list and stores it with the configured TTL.
func (s *Store) SaveSnapshot(ctx context.Context, products []Product) error {
	if s == nil || s.client == nil {
		return nil
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, s.ttl).Err()
}
