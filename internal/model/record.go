package model

import "time"

// ShortRecord is the primary record for a short id: the original URL plus
// the metadata needed to compute its expiry. One record lives on exactly one
// shard, chosen by hashing the short id.
type ShortRecord struct {
	ShortID     string    `json:"short_id"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	TTLSeconds  int64     `json:"ttl_seconds"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Analytics pairs a live ShortRecord with its click counter. The counter is
// stored separately (same shard, same TTL) and incremented atomically by the
// backend.
type Analytics struct {
	Record ShortRecord `json:"record"`
	Clicks int64       `json:"clicks"`
}

// CreateURLRequest is the API request body
type CreateURLRequest struct {
	URL         string `json:"url"`                    // original long URL
	TTL         int64  `json:"ttl,omitempty"`          // seconds; 0 means service default
	CustomAlias string `json:"custom_alias,omitempty"` // optional caller-supplied short id
}

// CreateURLResponse is the API response
type CreateURLResponse struct {
	ShortURL    string    `json:"short_url"`
	ShortID     string    `json:"short_id"`
	OriginalURL string    `json:"original_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
