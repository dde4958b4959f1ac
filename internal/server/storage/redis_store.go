package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/session"
)

const (
	// Redis key 前缀
	sessionKeyPrefix = "session:"
	presetKeyPrefix  = "preset:"
	sessionIndexKey  = "sessions"

	// 会话快照过期时间
	sessionExpiration = 2 * time.Hour
)

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client 底层客户端
func (rs *RedisStore) Client() *redis.Client { return rs.client }

// --- 会话快照 ---

// SaveSession 保存会话快照
func (rs *RedisStore) SaveSession(ctx context.Context, snap *session.Snapshot) error {
	if snap == nil {
		return nil
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("序列化会话数据失败: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+snap.ID, data, sessionExpiration)
	pipe.SAdd(ctx, sessionIndexKey, snap.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// LoadSession 加载会话快照，不存在时返回 nil, nil
func (rs *RedisStore) LoadSession(ctx context.Context, id string) (*session.Snapshot, error) {
	data, err := rs.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("反序列化会话数据失败: %w", err)
	}
	return &snap, nil
}

// DeleteSession 删除会话快照
func (rs *RedisStore) DeleteSession(ctx context.Context, id string) error {
	pipe := rs.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	pipe.SRem(ctx, sessionIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

// ListSessionIDs 所有仍有快照的会话 ID，顺带清理已过期的索引项
func (rs *RedisStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	ids, err := rs.client.SMembers(ctx, sessionIndexKey).Result()
	if err != nil {
		return nil, err
	}

	alive := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := rs.client.Exists(ctx, sessionKeyPrefix+id).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			rs.client.SRem(ctx, sessionIndexKey, id)
			continue
		}
		alive = append(alive, id)
	}
	return alive, nil
}

// --- 预设 ---

// SavePreset 保存预设，不过期
func (rs *RedisStore) SavePreset(ctx context.Context, preset *game.Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(preset)
	if err != nil {
		return fmt.Errorf("序列化预设失败: %w", err)
	}
	return rs.client.Set(ctx, presetKeyPrefix+preset.ID, data, 0).Err()
}

// LoadPreset 加载预设，不存在时返回 nil, nil
func (rs *RedisStore) LoadPreset(ctx context.Context, id string) (*game.Preset, error) {
	data, err := rs.client.Get(ctx, presetKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var preset game.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("反序列化预设失败: %w", err)
	}
	return &preset, nil
}

// SetSessionExpiration 设置会话快照过期时间
func (rs *RedisStore) SetSessionExpiration(ctx context.Context, id string, expiration time.Duration) error {
	return rs.client.Expire(ctx, sessionKeyPrefix+id, expiration).Err()
}
