package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// cullScanSize bounds how many of the oldest index members a single Cull
// inspects for expired data keys.
const cullScanSize = 512

// RedisBackend implements [Backend] on a Redis keyspace. Every value lives in
// its own key with a native TTL; two sorted sets index the keyspace: one by
// insertion time (for oldest-first culling) and one lexicographic (for
// segment-wise prefix invalidation without SCAN).
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend describes the newredisbackend operation and its observable behavior.
//
// NewRedisBackend may return an error when input validation, dependency calls, or security checks fail.
// NewRedisBackend does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisBackend(client redis.UniversalClient, prefix string) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("redis backend requires a client")
	}
	if prefix == "" {
		prefix = "gc"
	}
	if strings.ContainsAny(prefix, ": ") {
		return nil, errors.New("redis backend prefix must not contain ':' or spaces")
	}
	return &RedisBackend{client: client, prefix: prefix}, nil
}

func (b *RedisBackend) dataKey(key string) string { return b.prefix + ":v:" + key }
func (b *RedisBackend) ageIndex() string          { return b.prefix + ":idx" }
func (b *RedisBackend) lexIndex() string          { return b.prefix + ":lex" }

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := b.client.Get(ctx, b.dataKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Data key expired under Redis TTL; heal the indexes in passing.
			pipe := b.client.Pipeline()
			pipe.ZRem(ctx, b.ageIndex(), key)
			pipe.ZRem(ctx, b.lexIndex(), key)
			_, _ = pipe.Exec(ctx)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return value, nil
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("backend ttl must be > 0")
	}

	pipe := b.client.Pipeline()
	pipe.Set(ctx, b.dataKey(key), value, ttl)
	pipe.ZAdd(ctx, b.ageIndex(), redis.Z{Score: float64(time.Now().UnixNano()), Member: key})
	pipe.ZAdd(ctx, b.lexIndex(), redis.Z{Score: 0, Member: key})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	pipe := b.client.Pipeline()
	pipe.Del(ctx, b.dataKey(key))
	pipe.ZRem(ctx, b.ageIndex(), key)
	pipe.ZRem(ctx, b.lexIndex(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

// DeletePrefix removes the prefix key itself and everything under it,
// using the lexicographic index so cost is proportional to matches.
//
// DeletePrefix may return an error when input validation, dependency calls, or security checks fail.
// DeletePrefix does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	// Everything strictly under the prefix: keys between "prefix:" and
	// "prefix;" lex-wise are exactly the "prefix:*" keys (';' is ':'+1).
	members, err := b.client.ZRangeByLex(ctx, b.lexIndex(), &redis.ZRangeBy{
		Min: "[" + prefix + ":",
		Max: "(" + prefix + ";",
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	// The bare prefix key matches segment-wise too.
	if err := b.client.ZScore(ctx, b.lexIndex(), prefix).Err(); err == nil {
		members = append(members, prefix)
	} else if !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if len(members) == 0 {
		return 0, nil
	}
	return len(members), b.removeMembers(ctx, members)
}

// Cull first heals index entries whose data keys expired, then evicts
// oldest-inserted entries until at most budget remain. A budget <= 0 disables
// count-based eviction.
//
// Cull may return an error when input validation, dependency calls, or security checks fail.
// Cull does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Cull(ctx context.Context, budget int) (int, error) {
	removed, err := b.healOldest(ctx)
	if err != nil {
		return removed, err
	}

	if budget <= 0 {
		return removed, nil
	}

	size, err := b.client.ZCard(ctx, b.ageIndex()).Result()
	if err != nil {
		return removed, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	excess := int(size) - budget
	if excess <= 0 {
		return removed, nil
	}

	oldest, err := b.client.ZRange(ctx, b.ageIndex(), 0, int64(excess-1)).Result()
	if err != nil {
		return removed, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if len(oldest) == 0 {
		return removed, nil
	}
	if err := b.removeMembers(ctx, oldest); err != nil {
		return removed, err
	}
	return removed + len(oldest), nil
}

// Len describes the len operation and its observable behavior.
//
// Len may return an error when input validation, dependency calls, or security checks fail.
// Len does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	size, err := b.client.ZCard(ctx, b.ageIndex()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return int(size), nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

// healOldest drops index members whose data key already expired. Only the
// oldest cullScanSize members are inspected per call; older entries expire
// first, so repeated sweeps converge.
func (b *RedisBackend) healOldest(ctx context.Context) (int, error) {
	oldest, err := b.client.ZRange(ctx, b.ageIndex(), 0, cullScanSize-1).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if len(oldest) == 0 {
		return 0, nil
	}

	pipe := b.client.Pipeline()
	existence := make([]*redis.IntCmd, len(oldest))
	for i, member := range oldest {
		existence[i] = pipe.Exists(ctx, b.dataKey(member))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	stale := make([]string, 0, len(oldest))
	for i, member := range oldest {
		if existence[i].Val() == 0 {
			stale = append(stale, member)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	pipe = b.client.Pipeline()
	members := make([]interface{}, len(stale))
	for i, m := range stale {
		members[i] = m
	}
	pipe.ZRem(ctx, b.ageIndex(), members...)
	pipe.ZRem(ctx, b.lexIndex(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return len(stale), nil
}

func (b *RedisBackend) removeMembers(ctx context.Context, members []string) error {
	dataKeys := make([]string, len(members))
	zmembers := make([]interface{}, len(members))
	for i, m := range members {
		dataKeys[i] = b.dataKey(m)
		zmembers[i] = m
	}

	pipe := b.client.Pipeline()
	pipe.Del(ctx, dataKeys...)
	pipe.ZRem(ctx, b.ageIndex(), zmembers...)
	pipe.ZRem(ctx, b.lexIndex(), zmembers...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}
