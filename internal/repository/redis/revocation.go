package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ehr-api/internal/repository"
	"github.com/jwalitptl/ehr-api/pkg/circuitbreaker"
)

const keyPrefix = "ehr:revoked:"

type Config struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

// RevocationStore keeps revoked token ids in Redis with a TTL matching the
// token's remaining lifetime.
type RevocationStore struct {
	client redis.UniversalClient
	cb     *circuitbreaker.CircuitBreaker
}

// NewClient parses the URL, applies pool settings and pings the server
func NewClient(ctx context.Context, config Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.MinIdleConns > 0 {
		opts.MinIdleConns = config.MinIdleConns
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRevocationStore(client redis.UniversalClient) repository.TokenRevocationStore {
	return &RevocationStore{
		client: client,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-revocation",
			MaxFailures: 5,
			Timeout:     10 * time.Second,
		}),
	}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("token id is empty")
	}
	if ttl <= 0 {
		return nil
	}
	err := s.cb.Execute(func() error {
		return s.client.Set(ctx, keyPrefix+tokenID, "1", ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked. While Redis is
// unreachable the breaker fails the check, and callers treat that as an
// authentication failure.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	var revoked bool
	err := s.cb.Execute(func() error {
		n, err := s.client.Exists(ctx, keyPrefix+tokenID).Result()
		if err != nil {
			return err
		}
		revoked = n > 0
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("breaker", s.cb.State().String()).Msg("token revocation lookup failed")
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return revoked, nil
}
