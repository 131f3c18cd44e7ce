// Package redis implements a Redis-backed trace store so external
// observers (dashboards, plotting tools) can follow a run without touching
// the working directory.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/dmftio/bethe/pkg/chempot"
	"github.com/dmftio/bethe/pkg/domain"
)

// Store implements ports.TraceStore using Redis lists.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the expiration for trace keys.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for trace keys.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a new Redis trace store with options.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a new Redis trace store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "bethe:run:",
		ttl:    0, // no expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Close releases the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) iterKey(runID string) string {
	return s.prefix + runID + ":iterations"
}

func (s *Store) bisectionKey(runID string, iteration int) string {
	return fmt.Sprintf("%s%s:bisection:%d", s.prefix, runID, iteration)
}

// AppendIteration records one convergence record.
func (s *Store) AppendIteration(ctx context.Context, runID string, rec domain.IterationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal iteration record: %w", err)
	}
	key := s.iterKey(runID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("redis error appending iteration: %w", err)
	}
	return s.touch(ctx, key)
}

// AppendBisection records the full bisection trace of one iteration.
func (s *Store) AppendBisection(ctx context.Context, runID string, iteration int, trace []chempot.Step) error {
	if len(trace) == 0 {
		return nil
	}
	key := s.bisectionKey(runID, iteration)
	vals := make([]interface{}, 0, len(trace))
	for _, step := range trace {
		data, err := json.Marshal(step)
		if err != nil {
			return fmt.Errorf("failed to marshal bisection step: %w", err)
		}
		vals = append(vals, data)
	}
	if err := s.client.RPush(ctx, key, vals...).Err(); err != nil {
		return fmt.Errorf("redis error appending bisection trace: %w", err)
	}
	return s.touch(ctx, key)
}

// History returns the convergence records of a run, oldest first.
func (s *Store) History(ctx context.Context, runID string) ([]domain.IterationRecord, error) {
	raw, err := s.client.LRange(ctx, s.iterKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reading history: %w", err)
	}
	out := make([]domain.IterationRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.IterationRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal iteration record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) touch(ctx context.Context, key string) error {
	if s.ttl <= 0 {
		return nil
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error setting TTL: %w", err)
	}
	return nil
}
