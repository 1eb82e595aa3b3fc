package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	svcContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisService struct {
	svcContext.DefaultService
	client *redis.Client

	host     string
	port     string
	password string
	db       int
}

const REDIS_SVC = "redis_svc"

func (rs RedisService) Id() string {
	return REDIS_SVC
}

func (rs *RedisService) GetClient() *redis.Client {
	return rs.client
}

func (rs *RedisService) Configure(ctx *svcContext.Context) error {
	rs.host = os.Getenv("REDIS_HOST")
	if rs.host == "" {
		rs.host = "localhost"
	}

	rs.port = os.Getenv("REDIS_PORT")
	if rs.port == "" {
		rs.port = "6379"
	}

	rs.password = os.Getenv("REDIS_PASSWORD")

	dbStr := os.Getenv("REDIS_DB")
	if dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB value: %w", err)
		}
		rs.db = db
	}

	return rs.DefaultService.Configure(ctx)
}

func (rs *RedisService) Start() error {
	rs.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", rs.host, rs.port),
		Password: rs.password,
		DB:       rs.db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rs.client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Error("Failed to connect to Redis")
		return err
	}

	log.Println("Redis connected successfully")
	return nil
}

func (rs *RedisService) Shutdown() {
	if rs.client != nil {
		_ = rs.client.Close()
	}
}

func (rs *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return rs.client.Set(ctx, key, value, expiration).Err()
}

func (rs *RedisService) Get(ctx context.Context, key string) (string, error) {
	return rs.client.Get(ctx, key).Result()
}

func (rs *RedisService) Delete(ctx context.Context, keys ...string) error {
	return rs.client.Del(ctx, keys...).Err()
}

func (rs *RedisService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rs.client.Exists(ctx, key).Result()
	return n > 0, err
}

func (rs *RedisService) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return rs.client.Expire(ctx, key, expiration).Err()
}

func (rs *RedisService) TTL(ctx context.Context, key string) (time.Duration, error) {
	return rs.client.TTL(ctx, key).Result()
}

func (rs *RedisService) Increment(ctx context.Context, key string) (int64, error) {
	return rs.client.Incr(ctx, key).Result()
}
