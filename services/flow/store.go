package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taxly/models"
	"taxly/utils"

	"github.com/go-redis/redis/v8"
)

// RedisSnapshotStore persists flow snapshots and side-channel signals in
// Redis with a TTL, mirroring the abandoned-flow expiry of the funnel.
type RedisSnapshotStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisSnapshotStore creates the production snapshot store.
func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{Client: client, TTL: utils.FlowSnapshotTTL}
}

// Save writes the whole snapshot, replacing any previous copy.
func (s *RedisSnapshotStore) Save(ctx context.Context, snap *models.FlowSnapshot) error {
	snap.LastUpdatedAt = time.Now()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal flow snapshot: %w", err)
	}
	if err := s.Client.Set(ctx, utils.FlowSnapshotPrefix+snap.FlowID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save flow snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot for a flow, or nil if none is persisted.
func (s *RedisSnapshotStore) Load(ctx context.Context, flowID string) (*models.FlowSnapshot, error) {
	data, err := s.Client.Get(ctx, utils.FlowSnapshotPrefix+flowID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load flow snapshot: %w", err)
	}
	var snap models.FlowSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow snapshot: %w", err)
	}
	return &snap, nil
}

// Delete erases the snapshot.
func (s *RedisSnapshotStore) Delete(ctx context.Context, flowID string) error {
	return s.Client.Del(ctx, utils.FlowSnapshotPrefix+flowID).Err()
}

// WriteSignal records the side-channel verification signal for a flow.
func (s *RedisSnapshotStore) WriteSignal(ctx context.Context, flowID string, signal models.VerifySignal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal verify signal: %w", err)
	}
	if err := s.Client.Set(ctx, utils.VerifySignalPrefix+flowID, data, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to save verify signal: %w", err)
	}
	return nil
}

// LoadSignal returns the side-channel verification signal, or nil.
func (s *RedisSnapshotStore) LoadSignal(ctx context.Context, flowID string) (*models.VerifySignal, error) {
	data, err := s.Client.Get(ctx, utils.VerifySignalPrefix+flowID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load verify signal: %w", err)
	}
	var signal models.VerifySignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify signal: %w", err)
	}
	return &signal, nil
}

// ClearSignal erases the side-channel signal after consumption.
func (s *RedisSnapshotStore) ClearSignal(ctx context.Context, flowID string) error {
	return s.Client.Del(ctx, utils.VerifySignalPrefix+flowID).Err()
}
