package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "myhealth:session:"

// RedisRepository stores sessions under <prefix><id>:auth and
// <prefix><id>:activity. Both keys share a TTL that is refreshed on every
// touch, so abandoned sessions eventually disappear on their own.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRepository returns a repository using client. A zero ttl keeps
// keys until they are cleared.
func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, prefix: defaultRedisPrefix, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *RedisRepository) authKey(id string) string {
	return fmt.Sprintf("%s%s:auth", r.prefix, id)
}

func (r *RedisRepository) activityKey(id string) string {
	return fmt.Sprintf("%s%s:activity", r.prefix, id)
}

func (r *RedisRepository) Load(ctx context.Context, id string) (*Bundle, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, r.authKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decodeBundle(data), nil
}

func (r *RedisRepository) Save(ctx context.Context, id string, b *Bundle) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := encodeBundle(b)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.authKey(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisRepository) Clear(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.authKey(id), r.activityKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *RedisRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if err := checkID(id); err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.activityKey(id), strconv.FormatInt(at.UnixMilli(), 10), r.ttl)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.authKey(id), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (r *RedisRepository) LastActivity(ctx context.Context, id string) (time.Time, bool, error) {
	if err := checkID(id); err != nil {
		return time.Time{}, false, err
	}
	ms, err := r.client.Get(ctx, r.activityKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read activity: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

func (r *RedisRepository) IDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rest := strings.TrimPrefix(iter.Val(), r.prefix)
		idx := strings.LastIndexByte(rest, ':')
		if idx <= 0 {
			continue
		}
		seen[rest[:idx]] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
