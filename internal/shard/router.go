package shard

import (
	"crypto/md5" //nolint:gosec
	"encoding/binary"
	"fmt"
)

// Router maps an arbitrary string key to exactly one shard index.
//
// The mapping is a pure function of the key and the shard count: an md5
// digest of the key, first 8 bytes taken as a big-endian unsigned integer,
// reduced modulo the shard count. A strong hash avoids the clustering a
// character-sum would produce for keys sharing prefixes or lengths, and the
// result is stable across process restarts.
//
// Changing the shard count remaps keys; records on the old shard are
// effectively lost. Known limitation, no rebalancing is attempted.
type Router struct {
	count int
}

// NewRouter creates a router over count shards. Count must be at least 1;
// anything less is a configuration error, not something to fall back from.
func NewRouter(count int) (*Router, error) {
	if count < 1 {
		return nil, fmt.Errorf("shard count must be >= 1, got %d", count)
	}
	return &Router{count: count}, nil
}

// Route returns the shard index for key.
func (r *Router) Route(key string) int {
	sum := md5.Sum([]byte(key)) //nolint:gosec
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(r.count))
}

// Count returns the number of shards the router distributes over.
func (r *Router) Count() int {
	return r.count
}
