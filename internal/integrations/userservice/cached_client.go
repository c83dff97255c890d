package userservice

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Directory источник пользователей (обычно *Client)
type Directory interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// CachedClient кэширует роли пользователей поверх Directory.
// Ошибки кэша не ломают запрос: они логируются, и запрос уходит в сервис
type CachedClient struct {
	next  Directory
	cache RoleCache
	ttl   time.Duration
	log   Logger
}

// NewCachedClient создает клиент с кэшем ролей
func NewCachedClient(next Directory, cache RoleCache, ttl time.Duration, log Logger) *CachedClient {
	return &CachedClient{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// GetUser возвращает пользователя из кэша или из сервиса
func (c *CachedClient) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	role, found, err := c.cache.Get(ctx, userID)
	if err != nil {
		c.log.Warn("UserService cache: get user id=%d failed: %v", userID, err)
	} else if found && domain.Role(role).IsValid() {
		return &domain.User{ID: userID, Role: domain.Role(role)}, nil
	}

	user, err := c.next.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, userID, string(user.Role), c.ttl); err != nil {
		c.log.Warn("UserService cache: set user id=%d failed: %v", userID, err)
	}

	return user, nil
}

// RedisRoleCache кэш ролей в Redis
type RedisRoleCache struct {
	client *redis.Client
	prefix string
}

// NewRedisRoleCache создает кэш ролей в Redis
func NewRedisRoleCache(client *redis.Client, prefix string) *RedisRoleCache {
	if prefix == "" {
		prefix = "appointments:user_role"
	}
	return &RedisRoleCache{client: client, prefix: prefix}
}

// Get читает роль пользователя
func (c *RedisRoleCache) Get(ctx context.Context, userID int64) (string, bool, error) {
	role, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get: %v", ErrCache, err)
	}
	return role, true, nil
}

// Set сохраняет роль пользователя с TTL
func (c *RedisRoleCache) Set(ctx context.Context, userID int64, role string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(userID), role, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %v", ErrCache, err)
	}
	return nil
}

func (c *RedisRoleCache) key(userID int64) string {
	return c.prefix + ":" + strconv.FormatInt(userID, 10)
}
