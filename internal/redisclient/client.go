package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"restaurant-pos/internal/models"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/adjust_day.lua
var adjustDayScript string

const (
	activeDishesKey = "catalog:dishes:active"
	dayStatsTTL     = 40 * 24 * time.Hour
)

type Client struct {
	rdb          *redis.Client
	adjustScript *redis.Script
	catalogTTL   time.Duration
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int, catalogTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:          rdb,
		adjustScript: redis.NewScript(adjustDayScript),
		catalogTTL:   catalogTTL,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetActiveDishes returns the cached active dish list. ok is false on a
// cache miss.
func (c *Client) GetActiveDishes(ctx context.Context) (dishes []models.Dish, ok bool, err error) {
	raw, err := c.rdb.Get(ctx, activeDishesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if err := json.Unmarshal(raw, &dishes); err != nil {
		return nil, false, fmt.Errorf("corrupt catalog cache: %w", err)
	}
	return dishes, true, nil
}

// SetActiveDishes caches the active dish list
func (c *Client) SetActiveDishes(ctx context.Context, dishes []models.Dish) error {
	raw, err := json.Marshal(dishes)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, activeDishesKey, raw, c.catalogTTL).Err()
}

// InvalidateActiveDishes drops the cached active dish list
func (c *Client) InvalidateActiveDishes(ctx context.Context) error {
	return c.rdb.Del(ctx, activeDishesKey).Err()
}

// AdjustDayStats atomically applies deltas to the counters of one calendar
// day. Each event id is applied at most once; applied is false for a
// replayed event.
func (c *Client) AdjustDayStats(ctx context.Context, eventID, day string, sales, revenue, collected int64) (bool, error) {
	keys := []string{dayStatsKey(day), "ledger-event:" + eventID}
	ttl := int64(dayStatsTTL / time.Second)

	result, err := c.adjustScript.Run(ctx, c.rdb, keys, sales, revenue, collected, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("adjust day stats script failed: %w", err)
	}

	n, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	return n == 1, nil
}

// GetDayStats reads the counters of one calendar day (YYYY-MM-DD)
func (c *Client) GetDayStats(ctx context.Context, day string) (models.DayStats, error) {
	stats := models.DayStats{Date: day}

	result, err := c.rdb.HGetAll(ctx, dayStatsKey(day)).Result()
	if err != nil {
		return stats, err
	}

	stats.Sales, _ = strconv.ParseInt(result["sales"], 10, 64)
	stats.Revenue, _ = strconv.ParseInt(result["revenue"], 10, 64)
	stats.Collected, _ = strconv.ParseInt(result["collected"], 10, 64)
	return stats, nil
}

func dayStatsKey(day string) string {
	return fmt.Sprintf("dashboard:day:%s", day)
}
