package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadawaker/internal/agenda"
)

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func agendaKey(accountID int) string {
	return fmt.Sprintf("agenda:%d", accountID)
}

func (c *RedisCache) GetAgenda(ctx context.Context, accountID int) (*agenda.Agenda, error) {
	raw, err := c.rdb.Get(ctx, agendaKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a agenda.Agenda
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode cached agenda %d: %w", accountID, err)
	}
	return &a, nil
}

func (c *RedisCache) StoreAgenda(ctx context.Context, accountID int, a agenda.Agenda) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, agendaKey(accountID), b, c.ttl).Err()
}

// Invalidate drops the given accounts' agendas plus the all-accounts view (key 0).
func (c *RedisCache) Invalidate(ctx context.Context, accountIDs ...int) error {
	keys := []string{agendaKey(0)}
	for _, id := range accountIDs {
		if id != 0 {
			keys = append(keys, agendaKey(id))
		}
	}
	return c.rdb.Del(ctx, keys...).Err()
}
