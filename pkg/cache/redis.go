package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ==================== RedisClient Redis 缓存 ====================

// RedisClient 目录缓存用的 Redis 连接
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient 建立 Redis 连接并 Ping 验证
func NewRedisClient(addr string) (*RedisClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis 地址为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // 本地 Redis 默认无密码
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}
	log.Println("[Cache] Redis 连接成功")

	return &RedisClient{client: client}, nil
}

// Get 读取键，未命中返回 false
func (c *RedisClient) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("[Cache] 读取失败 key=%s: %v", key, err)
		return "", false
	}
	return val, true
}

// Set 写入键并设置过期时间
func (c *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete 删除键
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Close 关闭连接
func (c *RedisClient) Close() {
	if c.client != nil {
		c.client.Close()
		log.Println("[Cache] Redis 连接已关闭")
	}
}
