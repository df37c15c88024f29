package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jo-hoe/gallery/internal/backend/database"
	goredis "github.com/redis/go-redis/v9"
)

// Key patterns:
// - image:{id}  one record
// - images:all  the full listing, dropped whenever a record is created
// Both are dropped when the table is emptied.
const (
	allImagesKey    = "images:all"
	imageKeyPattern = "image:*"
	scanBatchSize   = 100
)

const DefaultTTL = 5 * time.Minute

type Config struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ImageCache keeps JSON copies of image records in Redis.
type ImageCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewImageCache(config Config) *ImageCache {
	client := goredis.NewClient(&goredis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return NewImageCacheWithClient(client, config.TTL)
}

func NewImageCacheWithClient(client *goredis.Client, ttl time.Duration) *ImageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ImageCache{
		client: client,
		ttl:    ttl,
	}
}

func imageKey(id int64) string {
	return fmt.Sprintf("image:%d", id)
}

// GetImage returns nil and no error on a cache miss.
func (c *ImageCache) GetImage(ctx context.Context, id int64) (*database.Image, error) {
	var image database.Image
	found, err := c.get(ctx, imageKey(id), &image)
	if err != nil || !found {
		return nil, err
	}
	return &image, nil
}

func (c *ImageCache) SetImage(ctx context.Context, image *database.Image) error {
	return c.set(ctx, imageKey(image.ID), image)
}

// GetAllImages returns nil and no error on a cache miss.
func (c *ImageCache) GetAllImages(ctx context.Context) ([]*database.Image, error) {
	var images []*database.Image
	found, err := c.get(ctx, allImagesKey, &images)
	if err != nil || !found {
		return nil, err
	}
	if images == nil {
		images = make([]*database.Image, 0)
	}
	return images, nil
}

func (c *ImageCache) SetAllImages(ctx context.Context, images []*database.Image) error {
	return c.set(ctx, allImagesKey, images)
}

func (c *ImageCache) InvalidateAllImages(ctx context.Context) error {
	if err := c.client.Del(ctx, allImagesKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", allImagesKey, err)
	}
	return nil
}

// InvalidateAll drops the listing and every cached record.
func (c *ImageCache) InvalidateAll(ctx context.Context) error {
	keys := []string{allImagesKey}
	iter := c.client.Scan(ctx, 0, imageKeyPattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan %s: %w", imageKeyPattern, err)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %d cached keys: %w", len(keys), err)
	}
	return nil
}

func (c *ImageCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ImageCache) Close() error {
	return c.client.Close()
}

func (c *ImageCache) get(ctx context.Context, key string, target any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (c *ImageCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
