package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Page is one manageable Facebook page belonging to a connected account.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

// IPageCache caches a user's page list between the OAuth connect flow and
// later publish requests, so sub-target display names resolve without an
// extra platform round-trip.
type IPageCache interface {
	SetPages(ctx context.Context, userID string, pages []Page) error
	GetPages(ctx context.Context, userID string) ([]Page, error)
	Invalidate(ctx context.Context, userID string) error
}

type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPageCache(client *redis.Client) IPageCache {
	return &PageCache{client: client, ttl: 24 * time.Hour}
}

func pageKey(userID string) string { return fmt.Sprintf("pages:facebook:%s", userID) }

func (c *PageCache) SetPages(ctx context.Context, userID string, pages []Page) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(pages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, pageKey(userID), data, c.ttl).Err()
}

func (c *PageCache) GetPages(ctx context.Context, userID string) ([]Page, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, pageKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pages []Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *PageCache) Invalidate(ctx context.Context, userID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, pageKey(userID)).Err()
}
