package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// PhotoCacheTTL bounds staleness of cached photo aggregates.
	PhotoCacheTTL = 5 * time.Minute

	// SkipTTL is how long a skipped photo stays excluded for a rater.
	SkipTTL = time.Hour
)

// CacheService provides a Redis cache-aside layer for photo lookups and
// holds the per-rater skip marks.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops and skips are silently not recorded).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		log.Println("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, caching disabled: %v", redisURL, err)
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, caching disabled: %v", err)
		return &CacheService{}
	}

	log.Println("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetPhoto retrieves a cached photo response. Returns nil if not cached or
// cache is disabled.
func (c *CacheService) GetPhoto(ctx context.Context, photoID string) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, photoKey(photoID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetPhoto stores a photo response in cache.
func (c *CacheService) SetPhoto(ctx context.Context, photoID string, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, photoKey(photoID), b, PhotoCacheTTL).Err()
}

// InvalidatePhoto removes a photo from cache (called after vote changes).
func (c *CacheService) InvalidatePhoto(ctx context.Context, photoID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, photoKey(photoID)).Err()
}

// MarkSkipped records a transient exclusion of the photo for the rater.
// Skip marks live in a per-rater sorted set scored by their expiry time,
// so enumeration and pruning are single range operations.
func (c *CacheService) MarkSkipped(ctx context.Context, voterID, photoID string) error {
	if c.rdb == nil {
		return nil
	}
	expiry := float64(time.Now().Add(SkipTTL).Unix())
	return c.rdb.ZAdd(ctx, skipKey(voterID), redis.Z{Score: expiry, Member: photoID}).Err()
}

// SkippedPhotoIDs returns the photo IDs the rater has skipped within the
// skip TTL, pruning expired marks along the way.
func (c *CacheService) SkippedPhotoIDs(ctx context.Context, voterID string) ([]string, error) {
	if c.rdb == nil {
		return nil, nil
	}
	key := skipKey(voterID)
	now := strconv.FormatInt(time.Now().Unix(), 10)

	if err := c.rdb.ZRemRangeByScore(ctx, key, "-inf", "("+now).Err(); err != nil {
		return nil, err
	}
	return c.rdb.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: now, Max: "+inf"}).Result()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func photoKey(photoID string) string {
	return fmt.Sprintf("photo:%s", photoID)
}

func skipKey(voterID string) string {
	return fmt.Sprintf("skips:%s", voterID)
}
