package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wallyhq/wally/models"
)

type RedisWallyCache struct {
	client redis.UniversalClient
}

func NewRedisWallyCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisWallyCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisWallyCache{client: client}, nil
}

func (redisCache *RedisWallyCache) Publish(ctx context.Context, channel string, message []byte) error {
	return redisCache.client.Publish(ctx, channel, message).Err()
}

func (redisCache *RedisWallyCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	pubsub := redisCache.client.Subscribe(ctx, channel)
	// Ensure subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		log.Printf("Pubsub channel closed: %s", channel)
		return err
	}

	ch := pubsub.Channel()

	go func() {
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()

	return nil
}

// Keys use hash tags so a wall's entries land on one cluster slot.
func buildWallEntitiesKey(wallName string) string {
	return "wall:{" + wallName + "}:entities"
}

func buildUserKey(clientId string) string {
	return "user:" + clientId
}

const (
	wallTTL = 10 * time.Minute
	userTTL = 30 * time.Minute
)

func (redisCache *RedisWallyCache) GetWallEntities(ctx context.Context, wallName string) ([]byte, bool, error) {
	val, err := redisCache.client.Get(ctx, buildWallEntitiesKey(wallName)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (redisCache *RedisWallyCache) SetWallEntities(ctx context.Context, wallName string, snapshot []byte) error {
	return redisCache.client.Set(ctx, buildWallEntitiesKey(wallName), snapshot, wallTTL).Err()
}

func (redisCache *RedisWallyCache) InvalidateWall(ctx context.Context, wallName string) error {
	return redisCache.client.Del(ctx, buildWallEntitiesKey(wallName)).Err()
}

func (redisCache *RedisWallyCache) GetUser(ctx context.Context, clientId string) (models.User, bool, error) {
	val, err := redisCache.client.Get(ctx, buildUserKey(clientId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.User{}, false, nil
		}
		return models.User{}, false, err
	}

	var user models.User
	if err := json.Unmarshal(val, &user); err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (redisCache *RedisWallyCache) SetUser(ctx context.Context, clientId string, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return redisCache.client.Set(ctx, buildUserKey(clientId), data, userTTL).Err()
}

func (redisCache *RedisWallyCache) InvalidateUser(ctx context.Context, clientId string) error {
	return redisCache.client.Del(ctx, buildUserKey(clientId)).Err()
}
