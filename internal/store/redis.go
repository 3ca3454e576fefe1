package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a redis backend. Strike increments use
// a pipelined INCR+EXPIRE so the count and its TTL refresh land in one
// round trip; dedup marking uses SET NX so only one of two concurrent
// duplicates can claim the content.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore connects to the redis instance at redisURL (redis:// or
// rediss:// for TLS) and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, redisURL string, log *slog.Logger) (*RedisStore, error) {
	if log == nil {
		log = slog.Default()
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected", "addr", opt.Addr, "tls", opt.TLSConfig != nil)
	return &RedisStore{
		client: client,
		log:    log.With("component", "redis_store"),
	}, nil
}

func (s *RedisStore) GetStrikes(ctx context.Context, chatID, userID int64) (int, error) {
	val, err := s.client.Get(ctx, strikeKey(chatID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get strikes: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("unexpected strike value %q: %w", val, err)
	}
	return count, nil
}

func (s *RedisStore) IncrementStrikes(ctx context.Context, chatID, userID int64) (int, error) {
	key := strikeKey(chatID, userID)

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, StrikeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment strikes: %w", err)
	}

	count := int(incr.Val())
	s.log.InfoContext(ctx, "Strike recorded", "chat_id", chatID, "user_id", userID, "strikes", count)
	return count, nil
}

func (s *RedisStore) ResetStrikes(ctx context.Context, chatID, userID int64) error {
	if err := s.client.Del(ctx, strikeKey(chatID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to reset strikes: %w", err)
	}
	s.log.InfoContext(ctx, "Strikes reset", "chat_id", chatID, "user_id", userID)
	return nil
}

func (s *RedisStore) IsDuplicate(ctx context.Context, chatID int64, msg string) (bool, error) {
	exists, err := s.client.Exists(ctx, dedupKey(chatID, hashContent(msg))).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup marker: %w", err)
	}
	return exists > 0, nil
}

func (s *RedisStore) MarkProcessed(ctx context.Context, chatID int64, msg string) (bool, error) {
	claimed, err := s.client.SetNX(ctx, dedupKey(chatID, hashContent(msg)), "1", DedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set dedup marker: %w", err)
	}
	return claimed, nil
}

func (s *RedisStore) IsStrictMode(ctx context.Context, chatID int64) (bool, error) {
	val, err := s.client.Get(ctx, strictKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get strict mode: %w", err)
	}
	return val == "1", nil
}

func (s *RedisStore) ToggleStrictMode(ctx context.Context, chatID int64) (bool, error) {
	current, err := s.IsStrictMode(ctx, chatID)
	if err != nil {
		return false, err
	}

	next := !current
	val := "0"
	if next {
		val = "1"
	}
	if err := s.client.Set(ctx, strictKey(chatID), val, 0).Err(); err != nil {
		return false, fmt.Errorf("failed to set strict mode: %w", err)
	}

	s.log.InfoContext(ctx, "Strict mode toggled", "chat_id", chatID, "enabled", next)
	return next, nil
}

func (s *RedisStore) IsWhitelisted(ctx context.Context, chatID, userID int64) (bool, error) {
	return s.isMember(ctx, whitelistKey(chatID), userID)
}

func (s *RedisStore) AddWhitelist(ctx context.Context, chatID, userID int64) error {
	return s.addMember(ctx, whitelistKey(chatID), userID)
}

func (s *RedisStore) RemoveWhitelist(ctx context.Context, chatID, userID int64) error {
	return s.removeMember(ctx, whitelistKey(chatID), userID)
}

func (s *RedisStore) ListWhitelist(ctx context.Context, chatID int64) ([]int64, error) {
	return s.listMembers(ctx, whitelistKey(chatID))
}

func (s *RedisStore) IsBlacklisted(ctx context.Context, chatID, userID int64) (bool, error) {
	return s.isMember(ctx, blacklistKey(chatID), userID)
}

func (s *RedisStore) AddBlacklist(ctx context.Context, chatID, userID int64) error {
	return s.addMember(ctx, blacklistKey(chatID), userID)
}

func (s *RedisStore) RemoveBlacklist(ctx context.Context, chatID, userID int64) error {
	return s.removeMember(ctx, blacklistKey(chatID), userID)
}

func (s *RedisStore) ListBlacklist(ctx context.Context, chatID int64) ([]int64, error) {
	return s.listMembers(ctx, blacklistKey(chatID))
}

func (s *RedisStore) isMember(ctx context.Context, key string, userID int64) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check set membership: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) addMember(ctx context.Context, key string, userID int64) error {
	if err := s.client.SAdd(ctx, key, strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to add set member: %w", err)
	}
	return nil
}

func (s *RedisStore) removeMember(ctx context.Context, key string, userID int64) error {
	if err := s.client.SRem(ctx, key, strconv.FormatInt(userID, 10)).Err(); err != nil {
		return fmt.Errorf("failed to remove set member: %w", err)
	}
	return nil
}

func (s *RedisStore) listMembers(ctx context.Context, key string) ([]int64, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list set members: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			s.log.WarnContext(ctx, "Skipping malformed set member", "key", key, "member", m)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisStore) Healthy(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
