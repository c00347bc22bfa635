package dedup

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisOpTimeout = 5 * time.Second
	redisLockTTL   = 30 * time.Minute
)

var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0`)

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisStore keeps the seen log as a Redis list under key, oldest first.
// Ownership is a SETNX lock on key+":lock".
type RedisStore struct {
	mu     sync.Mutex
	rdb    *redis.Client
	key    string
	token  string
	set    *SeenSet
	dirty  bool
	closed bool
	owned  bool // Close also closes rdb
	log    *slog.Logger
}

func OpenRedis(ctx context.Context, rdb *redis.Client, key string, capacity int, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	token := newToken()
	ok, err := rdb.SetNX(ctx, key+":lock", token, redisLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("dedup: redis lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	s := &RedisStore{rdb: rdb, key: key, token: token, log: logger}

	entries, err := rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.Warn("seen list unreadable, starting empty", "category", "state_corrupt", "key", key, "err", err)
		s.set = NewSeenSet(capacity)
	} else {
		s.set = NewSeenSetFrom(capacity, entries)
		logger.Info("seen list loaded", "key", key, "entries", s.set.Len())
	}
	return s, nil
}

func (s *RedisStore) HasSeen(fp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Has(fp)
}

func (s *RedisStore) Record(fp string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.Has(fp) {
		return
	}
	s.set.Add(fp)
	s.dirty = true
}

func (s *RedisStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

func (s *RedisStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *RedisStore) flushLocked() error {
	if !s.dirty {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	entries := s.set.Entries()
	args := make([]any, len(entries))
	for i, e := range entries {
		args[i] = e
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(args) > 0 {
			pipe.RPush(ctx, s.key, args...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("dedup: redis flush: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	ferr := s.flushLocked()

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	uerr := releaseLock.Run(ctx, s.rdb, []string{s.key + ":lock"}, s.token).Err()
	var cerr error
	if s.owned {
		cerr = s.rdb.Close()
	}
	return errors.Join(ferr, uerr, cerr)
}

// DialRedis connects to redisURL and opens the store on its own client,
// which Close releases.
func DialRedis(ctx context.Context, redisURL, key string, capacity int, logger *slog.Logger) (*RedisStore, error) {
	rdb, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		return nil, err
	}
	s, err := OpenRedis(ctx, rdb, key, capacity, logger)
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// LoadRedis reads the seen list without taking the lock. Like LoadFile it
// fails open.
func LoadRedis(ctx context.Context, redisURL, key string, capacity int, logger *slog.Logger) *SeenSet {
	if logger == nil {
		logger = slog.Default()
	}
	rdb, err := NewRedisClient(ctx, redisURL)
	if err != nil {
		logger.Warn("seen list unreachable, starting empty", "category", "state_corrupt", "key", key, "err", err)
		return NewSeenSet(capacity)
	}
	defer rdb.Close()

	entries, err := rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		logger.Warn("seen list unreadable, starting empty", "category", "state_corrupt", "key", key, "err", err)
		return NewSeenSet(capacity)
	}
	return NewSeenSetFrom(capacity, entries)
}

func newToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
