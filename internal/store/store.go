// Package store owns the two-record-per-id model: a primary URL record and
// its analytics counter, co-located on one shard and expiring together.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paularinzee/URL-Shortner/internal/logger"
	"github.com/paularinzee/URL-Shortner/internal/model"
	"github.com/paularinzee/URL-Shortner/internal/shard"
)

// Expected, user-facing outcomes. Not failures of the system.
var (
	ErrNotFound   = errors.New("short url not found")
	ErrAliasTaken = errors.New("alias already taken")
)

// BackendError means a shard was unreachable, timed out, or returned a
// payload that could not be decoded. It carries the shard index and the
// operation for logging; callers surface it as a generic server error.
type BackendError struct {
	Shard int
	Op    string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("shard %d: %s: %v", e.Shard, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// storedRecord is the persisted shape of the primary record. CreatedAt is an
// ISO-8601 string for compatibility with the persisted format.
type storedRecord struct {
	OriginalURL string `json:"originalUrl"`
	CreatedAt   string `json:"createdAt"`
	TTL         int64  `json:"ttl"`
}

const clicksField = "clicks"

func urlKey(shortID string) string {
	return "url:" + shortID
}

func clicksKey(shortID string) string {
	return "clicks:" + shortID
}

// Store routes every short id to one shard and manages the record pair
// living there. It has no locking of its own: correctness under concurrency
// rests on the backend's atomic primitives (set-with-expiry, HINCRBY,
// EXISTS). The one accepted race is the alias check-then-create sequence.
type Store struct {
	pool   *shard.Pool
	router *shard.Router
	log    *logger.Logger

	// clicks tracks in-flight fire-and-forget increments so shutdown can
	// drain them.
	clicks sync.WaitGroup
}

// New creates a Store over an already constructed pool. The router's shard
// count always matches the pool's; a mismatch here would misroute every key.
func New(pool *shard.Pool, log *logger.Logger) (*Store, error) {
	router, err := shard.NewRouter(pool.Count())
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:   pool,
		router: router,
		log:    log,
	}, nil
}

// Create writes the primary record and its zeroed click counter with the
// same TTL. With isAlias set, an existence check runs first and a taken
// alias fails without writing anything. The check is best-effort: two
// concurrent creators of the same alias can still overwrite each other.
//
// The two writes are sequential, not transactional. A crash in between
// leaves at most an orphaned counter, which expires on its own.
func (s *Store) Create(ctx context.Context, shortID, originalURL string, ttlSeconds int64, isAlias bool) (*model.ShortRecord, error) {
	idx := s.router.Route(shortID)
	c := s.pool.Client(idx)
	ttl := time.Duration(ttlSeconds) * time.Second

	if isAlias {
		n, err := c.Exists(ctx, urlKey(shortID)).Result()
		if err != nil {
			return nil, &BackendError{Shard: idx, Op: "exists", Err: err}
		}
		if n > 0 {
			return nil, ErrAliasTaken
		}
	}

	now := time.Now().UTC()
	payload, err := json.Marshal(storedRecord{
		OriginalURL: originalURL,
		CreatedAt:   now.Format(time.RFC3339),
		TTL:         ttlSeconds,
	})
	if err != nil {
		// Local encoding failure, not the shard's fault.
		return nil, fmt.Errorf("encode record %s: %w", shortID, err)
	}

	if err := c.Set(ctx, urlKey(shortID), payload, ttl).Err(); err != nil {
		return nil, &BackendError{Shard: idx, Op: "set", Err: err}
	}

	// Counter gets its own expiry, set to the same TTL. If this write fails
	// the primary record stands; analytics simply read as zero clicks.
	if err := c.HSet(ctx, clicksKey(shortID), clicksField, 0).Err(); err != nil {
		s.log.Error("failed to initialize click counter",
			"short_id", shortID, "shard", idx, "error", err.Error())
	} else if err := c.Expire(ctx, clicksKey(shortID), ttl).Err(); err != nil {
		s.log.Error("failed to set click counter expiry",
			"short_id", shortID, "shard", idx, "error", err.Error())
	}

	return &model.ShortRecord{
		ShortID:     shortID,
		OriginalURL: originalURL,
		CreatedAt:   now,
		TTLSeconds:  ttlSeconds,
		ExpiresAt:   now.Add(ttl),
	}, nil
}

// Get fetches and decodes the primary record. A missing key is ErrNotFound;
// a payload that fails to decode is data corruption and reported as a
// backend error, never as not-found.
func (s *Store) Get(ctx context.Context, shortID string) (*model.ShortRecord, error) {
	idx := s.router.Route(shortID)

	raw, err := s.pool.Client(idx).Get(ctx, urlKey(shortID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &BackendError{Shard: idx, Op: "get", Err: err}
	}

	var stored storedRecord
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, &BackendError{Shard: idx, Op: "decode", Err: err}
	}
	createdAt, err := time.Parse(time.RFC3339, stored.CreatedAt)
	if err != nil {
		return nil, &BackendError{Shard: idx, Op: "decode", Err: err}
	}

	return &model.ShortRecord{
		ShortID:     shortID,
		OriginalURL: stored.OriginalURL,
		CreatedAt:   createdAt,
		TTLSeconds:  stored.TTL,
		ExpiresAt:   createdAt.Add(time.Duration(stored.TTL) * time.Second),
	}, nil
}

// RecordClick increments the click counter off the caller's response path.
// The increment runs in a detached goroutine; a slow or failing shard never
// adds latency or failure to a redirect. Errors are logged and discarded.
func (s *Store) RecordClick(shortID string) {
	s.clicks.Add(1)
	go func() {
		defer s.clicks.Done()

		idx := s.router.Route(shortID)
		err := s.pool.Client(idx).HIncrBy(context.Background(), clicksKey(shortID), clicksField, 1).Err()
		if err != nil {
			s.log.Error("failed to record click",
				"short_id", shortID, "shard", idx, "error", err.Error())
		}
	}()
}

// GetAnalytics returns the primary record with its click count. The primary
// record is authoritative: if it is gone the result is ErrNotFound even when
// a stray counter lingers. A missing counter with a live record reads as
// zero clicks.
func (s *Store) GetAnalytics(ctx context.Context, shortID string) (*model.Analytics, error) {
	rec, err := s.Get(ctx, shortID)
	if err != nil {
		return nil, err
	}

	idx := s.router.Route(shortID)
	clicks, err := s.pool.Client(idx).HGet(ctx, clicksKey(shortID), clicksField).Int64()
	if errors.Is(err, redis.Nil) {
		clicks = 0
	} else if err != nil {
		return nil, &BackendError{Shard: idx, Op: "hget", Err: err}
	}

	return &model.Analytics{Record: *rec, Clicks: clicks}, nil
}

// Delete removes both records and reports whether the primary existed.
// Deleting a missing id is not an error; existed is false so the caller can
// decide whether to surface a 404.
func (s *Store) Delete(ctx context.Context, shortID string) (existed bool, err error) {
	idx := s.router.Route(shortID)
	c := s.pool.Client(idx)

	n, err := c.Del(ctx, urlKey(shortID)).Result()
	if err != nil {
		return false, &BackendError{Shard: idx, Op: "del", Err: err}
	}
	if err := c.Del(ctx, clicksKey(shortID)).Err(); err != nil {
		return n > 0, &BackendError{Shard: idx, Op: "del", Err: err}
	}
	return n > 0, nil
}

// Wait blocks until all in-flight click increments finish. Called during
// shutdown, after the server has stopped accepting work.
func (s *Store) Wait() {
	s.clicks.Wait()
}
