package rdx

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the redis client used for response caching and pub/sub.
type Cache struct {
	Conn *redis.Client
}

func NewCache(addr string) *Cache {
	return &Cache{
		Conn: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// GetJSON loads a cached value into dest. Returns false on miss or
// decode failure; a broken cache entry is treated as a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.Conn.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Println("cache unmarshal error:", err)
		c.Conn.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value under key with a TTL. Failures are logged, not
// surfaced; the cache is best-effort.
func (c *Cache) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	data, err := json.Marshal(val)
	if err != nil {
		log.Println("cache marshal error:", err)
		return
	}
	if err := c.Conn.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Println("cache set error:", err)
	}
}

// Del drops cache keys, used on entity mutation.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if err := c.Conn.Del(ctx, keys...).Err(); err != nil {
		log.Println("cache del error:", err)
	}
}

func (c *Cache) Close() error {
	return c.Conn.Close()
}
