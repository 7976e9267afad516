package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/paularinzee/URL-Shortner/internal/model"
	"github.com/paularinzee/URL-Shortner/internal/shard"
	"github.com/paularinzee/URL-Shortner/internal/shortid"
	"github.com/paularinzee/URL-Shortner/internal/store"
)

// Custom errors for the service layer
var (
	ErrInvalidURL   = errors.New("invalid URL format")
	ErrEmptyURL     = errors.New("URL cannot be empty")
	ErrInvalidTTL   = errors.New("TTL is out of range")
	ErrAliasExists  = errors.New("custom alias already taken")
	ErrInvalidAlias = errors.New("alias contains invalid characters")
	ErrURLNotFound  = errors.New("short URL not found")
)

// URLService handles business logic for URL operations
type URLService struct {
	store      *store.Store
	pool       *shard.Pool
	baseURL    string // e.g., "http://localhost:8080"
	defaultTTL time.Duration
	maxTTL     time.Duration
}

// NewURLService creates a new service instance
func NewURLService(st *store.Store, pool *shard.Pool, baseURL string, defaultTTL, maxTTL time.Duration) *URLService {
	return &URLService{
		store:      st,
		pool:       pool,
		baseURL:    strings.TrimRight(baseURL, "/"),
		defaultTTL: defaultTTL,
		maxTTL:     maxTTL,
	}
}

// CreateShortURL handles the core business logic of shortening a URL
func (s *URLService) CreateShortURL(ctx context.Context, req model.CreateURLRequest) (*model.CreateURLResponse, error) {
	// ============ STEP 1: Validation ============
	if err := s.validateURL(req.URL); err != nil {
		return nil, err
	}

	ttl, err := s.resolveTTL(req.TTL)
	if err != nil {
		return nil, err
	}

	// ============ STEP 2: Determine Short Code ============
	var shortCode string
	isAlias := req.CustomAlias != ""

	if isAlias {
		// User wants a custom alias; uniqueness is enforced by the store
		// at creation time.
		if _, err := shortid.ValidateAlias(req.CustomAlias); err != nil {
			return nil, ErrInvalidAlias
		}
		shortCode = req.CustomAlias
	} else {
		// Random id; collisions are probabilistic and treated as
		// exceedingly unlikely, no retry loop.
		shortCode, err = shortid.Generate()
		if err != nil {
			return nil, err
		}
	}

	// ============ STEP 3: Create the record ============
	rec, err := s.store.Create(ctx, shortCode, req.URL, ttl, isAlias)
	if err != nil {
		if errors.Is(err, store.ErrAliasTaken) {
			return nil, ErrAliasExists
		}
		return nil, err
	}

	// ============ STEP 4: Build response ============
	return &model.CreateURLResponse{
		ShortURL:    s.baseURL + "/" + rec.ShortID,
		ShortID:     rec.ShortID,
		OriginalURL: rec.OriginalURL,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

// Resolve finds the original URL and records the click. The click write
// happens off the response path: a slow or failing shard never delays the
// redirect.
func (s *URLService) Resolve(ctx context.Context, shortCode string) (string, error) {
	rec, err := s.store.Get(ctx, shortCode)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrURLNotFound
	}
	if err != nil {
		return "", err
	}

	s.store.RecordClick(shortCode)

	return rec.OriginalURL, nil
}

// GetURLStats returns the record and its click count for a short URL
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*model.Analytics, error) {
	stats, err := s.store.GetAnalytics(ctx, shortCode)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrURLNotFound
	}
	return stats, err
}

// Delete removes a short URL and its analytics. Reports whether the URL
// existed so the handler can choose to surface 404.
func (s *URLService) Delete(ctx context.Context, shortCode string) (bool, error) {
	return s.store.Delete(ctx, shortCode)
}

// Health reports aggregate shard liveness
func (s *URLService) Health(ctx context.Context) shard.PoolHealth {
	return s.pool.Health(ctx)
}

// ============ VALIDATION HELPERS ============

func (s *URLService) validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrEmptyURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidURL
	}

	// Must have scheme (http/https) and host
	if parsed.Scheme == "" || parsed.Host == "" {
		return ErrInvalidURL
	}

	// Only allow http and https
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}

	return nil
}

// resolveTTL applies the default when the request omits a TTL and bounds
// everything by the configured maximum. The bound is compared in seconds:
// converting the requested value to a time.Duration first would overflow
// int64 for huge inputs and slip past the check.
func (s *URLService) resolveTTL(requested int64) (int64, error) {
	if requested == 0 {
		return int64(s.defaultTTL / time.Second), nil
	}
	if requested < 0 || requested > int64(s.maxTTL/time.Second) {
		return 0, ErrInvalidTTL
	}
	return requested, nil
}
