package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// RedisStorage keeps a session's cart and wishlist in redis, for
// storefront nodes that hold per-session state server-side. Keys are
// scoped by session id and never expire; carts outlive reconnects.
type RedisStorage struct {
	client  *redis.Client
	session string
}

func NewRedisStorage(client *redis.Client, sessionID string) *RedisStorage {
	return &RedisStorage{client: client, session: sessionID}
}

func (s *RedisStorage) LoadCart() ([]LineItem, bool, error) {
	var items []LineItem
	ok, err := s.load(s.cartKey(), &items)
	return items, ok, err
}

func (s *RedisStorage) SaveCart(items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	return s.save(s.cartKey(), items)
}

func (s *RedisStorage) LoadWishlist() ([]Game, bool, error) {
	var items []Game
	ok, err := s.load(s.wishlistKey(), &items)
	return items, ok, err
}

func (s *RedisStorage) SaveWishlist(items []Game) error {
	if items == nil {
		items = []Game{}
	}
	return s.save(s.wishlistKey(), items)
}

func (s *RedisStorage) load(key string, v any) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return true, nil
}

func (s *RedisStorage) save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStorage) cartKey() string {
	return fmt.Sprintf("cart:%s", s.session)
}

func (s *RedisStorage) wishlistKey() string {
	return fmt.Sprintf("wishlist:%s", s.session)
}
