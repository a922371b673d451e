package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HatiCode/retrofit/pkg/simulation"
)

// KeyPrefix namespaces report keys in Redis.
const KeyPrefix = "retrofit:report:"

// RedisStore implements Store on Redis.
// Several planner instances can share computed reports through it, and
// entries expire after the configured TTL. It is safe for concurrent use.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
}

// NewRedisStore creates a Redis-backed store and verifies the connection
// with a ping.
//
// Parameters:
//   - addr: Redis server address, for example "localhost:6379"
//   - password: Redis password (empty for no auth)
//   - db: Redis database number (must be >= 0)
//   - ttl: report expiration (0 uses 30 minutes)
//
// It returns an error when a parameter is invalid or Redis is unreachable.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	if db < 0 {
		return nil, errors.New("redis database number must be >= 0")
	}

	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// reportKey returns the Redis key holding the report for scenario.
func reportKey(scenario string) string {
	return KeyPrefix + scenario
}

// Put stores report in Redis as JSON with TTL-based expiration.
// The key format is "retrofit:report:{scenario}"; an existing report for the
// same scenario is overwritten and its TTL restarted.
func (r *RedisStore) Put(ctx context.Context, report simulation.Report) error {
	if err := validateScenarioName(report.Scenario); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := r.client.Set(ctx, reportKey(report.Scenario), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report in redis: %w", err)
	}

	return nil
}

// GetLatest retrieves the latest report for scenario.
//
// Returns:
//   - report: the stored report (zero value if not found)
//   - found: true if the key exists, false if it expired or was never set
//   - error: non-nil on connection or decoding failures (a missing key is not an error)
func (r *RedisStore) GetLatest(ctx context.Context, scenario string) (simulation.Report, bool, error) {
	if scenario == "" {
		return simulation.Report{}, false, errors.New("scenario name required")
	}

	data, err := r.client.Get(ctx, reportKey(scenario)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return simulation.Report{}, false, nil
		}
		return simulation.Report{}, false, fmt.Errorf("failed to get report from redis: %w", err)
	}

	var report simulation.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return simulation.Report{}, false, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return report, true, nil
}

// Close closes the Redis client connection.
// It is safe to call multiple times (idempotent).
func (r *RedisStore) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil
	if err != nil && err.Error() == "redis: client is closed" {
		return nil
	}

	return err
}

// Ping checks the Redis connection health.
// It returns an error when the server cannot be reached.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
