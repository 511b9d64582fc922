package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/trafikinfo-se/trafikinfo/pkg/redis_client"
	"github.com/trafikinfo-se/trafikinfo/pkg/traffic"
)

// SensorState is what the sensor collaborator renders for one category:
// the snapshot size, the capped record list and the most recent diff
// counters for diagnostics.
type SensorState struct {
	Instance    string
	MessageType traffic.MessageType

	Count int

	Added   int
	Updated int
	Removed int
	Dropped int

	LastPoll     time.Time
	LastModified string

	Incidents []traffic.Incident
}

// StateStore persists sensor state per instance and category in redis.
type StateStore struct {
	Cache *cache.Cache[string]
}

func NewStateStore() *StateStore {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(24*time.Hour))

	return &StateStore{
		Cache: cache.New[string](redisStore),
	}
}

func stateKey(instance string, messageType traffic.MessageType) string {
	return fmt.Sprintf("sensor-state/%s/%s", instance, messageType.Slug())
}

func (s *StateStore) Set(ctx context.Context, state *SensorState) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return s.Cache.Set(ctx, stateKey(state.Instance, state.MessageType), string(stateBytes))
}

func (s *StateStore) Get(ctx context.Context, instance string, messageType traffic.MessageType) (*SensorState, error) {
	stateJSON, err := s.Cache.Get(ctx, stateKey(instance, messageType))
	if err != nil {
		return nil, err
	}

	var state SensorState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, err
	}

	return &state, nil
}
