package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dei-tracker/web/internal/models"
	"github.com/dei-tracker/web/pkg/logger"
	"github.com/dei-tracker/web/pkg/retry"
)

// Client stores fetch-all listing sessions so they survive across gateway
// replicas.
type Client struct {
	client *redis.Client
}

// NewClient connects and pings, retrying while the server is unreachable.
// Authentication failures are not retried.
func NewClient(ctx context.Context, host string, port int, password string, db int, retryCfg retry.Config) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	err := retry.Do(ctx, retryCfg, func(ctx context.Context) error {
		err := client.Ping(ctx).Err()
		if err != nil && isAuthError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{client: client}, nil
}

func isAuthError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "WRONGPASS") || strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "NOPERM")
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Name() string {
	return "redis"
}

func (c *Client) SetRows(ctx context.Context, key string, rows []models.Company, ttl time.Duration) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal listing rows: %w", err)
	}

	err = c.client.Set(ctx, listingKey(key), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set listing session: %w", err)
	}

	logger.Debug("Listing session stored", zap.String("key", key), zap.Int("rows", len(rows)), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetRows(ctx context.Context, key string) ([]models.Company, bool, error) {
	data, err := c.client.Get(ctx, listingKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get listing session: %w", err)
	}

	var rows []models.Company
	err = json.Unmarshal(data, &rows)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal listing rows: %w", err)
	}

	logger.Debug("Listing session hit", zap.String("key", key))
	return rows, true, nil
}

// FlushListings removes every stored listing session.
func (c *Client) FlushListings(ctx context.Context) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, listingKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete listing session", zap.Error(err))
			continue
		}
		removed++
	}

	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to iterate listing sessions: %w", err)
	}

	logger.Info("Listing sessions flushed", zap.Int("removed", removed))
	return removed, nil
}

func listingKey(key string) string {
	return fmt.Sprintf("dei-web:listing:%s", key)
}
