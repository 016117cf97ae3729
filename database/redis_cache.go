package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

const (
	userRedisPattern = "LINK_USER_%s_%s"
	userRedisExpire  = time.Hour
)

// UserCache caches linked-account lookups keyed by (serverID, userID),
// the hot path of verified chat relay. GetUser returns (nil, nil) on a
// miss. Writers must invalidate after every link or unlink.
type UserCache interface {
	GetUser(serverID, userID string) (*User, error)
	SetUser(u *User) error
	DelUser(serverID, userID string) error
}

// RedisUserCache redis UserCache
type RedisUserCache struct {
	client *redis.Client
}

// NewRedisUserCache NewRedisUserCache
func NewRedisUserCache(client *redis.Client) *RedisUserCache {
	return &RedisUserCache{client: client}
}

// GetUser GetUser
func (c *RedisUserCache) GetUser(serverID, userID string) (*User, error) {
	key := fmt.Sprintf(userRedisPattern, serverID, userID)
	str, err := c.client.Get(key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user := &User{}
	if err := json.Unmarshal([]byte(str), user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUser SetUser
func (c *RedisUserCache) SetUser(u *User) error {
	val, _ := json.Marshal(u)
	key := fmt.Sprintf(userRedisPattern, u.ServerID, u.UserID)
	return c.client.Set(key, val, userRedisExpire).Err()
}

// DelUser DelUser
func (c *RedisUserCache) DelUser(serverID, userID string) error {
	return c.client.Del(fmt.Sprintf(userRedisPattern, serverID, userID)).Err()
}

// NoopUserCache is used when redis is not configured; every lookup goes
// straight to the store.
type NoopUserCache struct{}

// NewNoopUserCache NewNoopUserCache
func NewNoopUserCache() *NoopUserCache {
	return &NoopUserCache{}
}

// GetUser GetUser
func (c *NoopUserCache) GetUser(serverID, userID string) (*User, error) {
	return nil, nil
}

// SetUser SetUser
func (c *NoopUserCache) SetUser(u *User) error {
	return nil
}

// DelUser DelUser
func (c *NoopUserCache) DelUser(serverID, userID string) error {
	return nil
}

// InitRedis return a redis instance
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return client, nil
}
