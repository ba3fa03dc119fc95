package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsriharsha402/cleaning-booking-system/internal/utils"
)

// DailySlots is the cached result of a daily availability query: cleaner id to
// free start instants.
type DailySlots map[int64][]time.Time

// ErrStale is returned by Set when the date was invalidated after the caller
// read its generation.
var ErrStale = errors.New("availability cache: generation changed")

// AvailabilityCache stores daily availability per date and duration.
// Get reports ok=false on a miss. Every Invalidate bumps the date's generation;
// Set only writes when the generation still equals the one the caller read
// before computing slots, so a result computed before a booking commit cannot
// land after that commit's invalidation.
type AvailabilityCache interface {
	Get(ctx context.Context, date time.Time, durationHours int) (DailySlots, bool, error)
	Generation(ctx context.Context, date time.Time) (int64, error)
	Set(ctx context.Context, date time.Time, durationHours int, slots DailySlots, generation int64) error
	Invalidate(ctx context.Context, dates ...time.Time) error
}

// Key of the hash holding every duration for one calendar date.
func Key(date time.Time) string {
	return "availability:" + date.Format(utils.DateLayout)
}

// GenerationKey of the counter bumped on every invalidation of date.
func GenerationKey(date time.Time) string {
	return "availability:gen:" + date.Format(utils.DateLayout)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial connects and pings the server.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, date time.Time, durationHours int) (DailySlots, bool, error) {
	raw, err := c.client.HGet(ctx, Key(date), strconv.Itoa(durationHours)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	slots, err := Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return slots, true, nil
}

func (c *RedisCache) Generation(ctx context.Context, date time.Time) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Set(ctx context.Context, date time.Time, durationHours int, slots DailySlots, generation int64) error {
	raw, err := Encode(slots)
	if err != nil {
		return err
	}
	key, genKey := Key(date), GenerationKey(date)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, strconv.Itoa(durationHours), raw)
			if c.ttl > 0 {
				p.Expire(ctx, key, c.ttl)
			}
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (c *RedisCache) Invalidate(ctx context.Context, dates ...time.Time) error {
	if len(dates) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, d := range dates {
			genKey := GenerationKey(d)
			p.Incr(ctx, genKey)
			if c.ttl > 0 {
				// outlives every hash written under it
				p.Expire(ctx, genKey, 2*c.ttl)
			}
			p.Del(ctx, Key(d))
		}
		return nil
	})
	return err
}

// Encode serializes slots with string keys, as JSON objects require.
func Encode(slots DailySlots) ([]byte, error) {
	out := make(map[string][]time.Time, len(slots))
	for id, starts := range slots {
		out[strconv.FormatInt(id, 10)] = starts
	}
	return json.Marshal(out)
}

func Decode(raw []byte) (DailySlots, error) {
	var in map[string][]time.Time
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	out := make(DailySlots, len(in))
	for k, starts := range in {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode availability: cleaner id %q: %w", k, err)
		}
		out[id] = starts
	}
	return out, nil
}

// Nop never hits; used when no redis is configured.
type Nop struct{}

func (Nop) Get(context.Context, time.Time, int) (DailySlots, bool, error) { return nil, false, nil }
func (Nop) Generation(context.Context, time.Time) (int64, error) { return 0, nil }
func (Nop) Set(context.Context, time.Time, int, DailySlots, int64) error { return nil }
func (Nop) Invalidate(context.Context, ...time.Time) error { return nil }
