package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
)

const stateTTL = 24 * time.Hour

// RedisManager keeps chat state in Redis so it survives restarts
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager connects to Redis and checks the connection
func NewRedisManager(cfg config.RedisConfig) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisManagerWithClient(client), nil
}

// NewRedisManagerWithClient wraps an existing client
func NewRedisManagerWithClient(client *redis.Client) *RedisManager {
	return &RedisManager{client: client}
}

func stateKey(chatID int64) string {
	return fmt.Sprintf("chat:%d:state", chatID)
}

func batchKey(chatID int64) string {
	return fmt.Sprintf("chat:%d:last_batch", chatID)
}

// SetUserState sets the state for a chat with TTL
func (m *RedisManager) SetUserState(chatID int64, state string) {
	ctx := context.Background()
	if err := m.client.Set(ctx, stateKey(chatID), state, stateTTL).Err(); err != nil {
		logger.Error("Failed to store chat state", "chat_id", chatID, "error", err)
	}
}

// GetUserState gets the state for a chat
func (m *RedisManager) GetUserState(chatID int64) string {
	ctx := context.Background()
	result := m.client.Get(ctx, stateKey(chatID))
	if result.Err() == redis.Nil {
		return None
	}
	if result.Err() != nil {
		logger.Error("Failed to read chat state", "chat_id", chatID, "error", result.Err())
		return None
	}
	return result.Val()
}

// ClearUserState clears the state for a chat
func (m *RedisManager) ClearUserState(chatID int64) {
	m.client.Del(context.Background(), stateKey(chatID))
}

// SetLastBatch remembers the records created by the last message
func (m *RedisManager) SetLastBatch(chatID int64, refs []domain.RecordRef) {
	data, err := json.Marshal(refs)
	if err != nil {
		return
	}
	ctx := context.Background()
	if err := m.client.Set(ctx, batchKey(chatID), data, stateTTL).Err(); err != nil {
		logger.Error("Failed to store last batch", "chat_id", chatID, "error", err)
	}
}

// GetLastBatch returns the records created by the last message
func (m *RedisManager) GetLastBatch(chatID int64) ([]domain.RecordRef, bool) {
	ctx := context.Background()
	raw, err := m.client.Get(ctx, batchKey(chatID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Error("Failed to read last batch", "chat_id", chatID, "error", err)
		}
		return nil, false
	}

	var refs []domain.RecordRef
	if err := json.Unmarshal(raw, &refs); err != nil || len(refs) == 0 {
		return nil, false
	}
	return refs, true
}

// ClearLastBatch forgets the last batch
func (m *RedisManager) ClearLastBatch(chatID int64) {
	m.client.Del(context.Background(), batchKey(chatID))
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
