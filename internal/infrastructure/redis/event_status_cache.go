package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

const (
	fieldAvailable = "available"
	fieldWaiting   = "waiting"
)

// EventStatusCache はイベントの販売状況（残数・順番待ち数）をキャッシュする
type EventStatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventStatusCache は新しいEventStatusCacheを作成する
func NewEventStatusCache(client *redis.Client, ttl time.Duration) *EventStatusCache {
	return &EventStatusCache{client: client, ttl: ttl}
}

// Get はキャッシュから販売状況を取得する
func (c *EventStatusCache) Get(ctx context.Context, eventID string) (*event.Status, error) {
	values, err := c.client.HGetAll(ctx, c.key(eventID)).Result()
	if err != nil {
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrCacheMiss
	}

	available, err := strconv.Atoi(values[fieldAvailable])
	if err != nil {
		return nil, ErrCacheMiss
	}
	waiting, err := strconv.Atoi(values[fieldWaiting])
	if err != nil {
		return nil, ErrCacheMiss
	}
	return &event.Status{AvailableTickets: available, WaitingCount: waiting}, nil
}

// Set は販売状況をTTL付きで保存する
func (c *EventStatusCache) Set(ctx context.Context, eventID string, status *event.Status) error {
	key := c.key(eventID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldAvailable, status.AvailableTickets, fieldWaiting, status.WaitingCount)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *EventStatusCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.key(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *EventStatusCache) key(eventID string) string {
	return fmt.Sprintf("events:status:%s", eventID)
}
