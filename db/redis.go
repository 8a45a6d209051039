package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const rateLimitPrefix = "fragmenteditor:ratelimit:"

func ConnectRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		fmt.Println("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// RateLimiter counts requests per API key in fixed windows backed by Redis.
type RateLimiter struct {
	Limit  int64
	Window time.Duration
}

// Allow increments the key's window counter and reports whether the request
// fits under the limit. The counter expires with the window, so idle keys
// cost nothing.
func (rl RateLimiter) Allow(apiKey string) (bool, error) {
	key := rateLimitPrefix + apiKey

	count, err := Redis.Incr(Ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := Redis.Expire(Ctx, key, rl.Window).Err(); err != nil {
			return false, err
		}
	}

	return count <= rl.Limit, nil
}
