package shard

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/paularinzee/URL-Shortner/internal/logger"
)

// Health status values reported by Pool.Health.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// ShardHealth is the liveness of a single shard.
type ShardHealth struct {
	Index   int    `json:"index"`
	Addr    string `json:"addr"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// PoolHealth aggregates per-shard liveness into an overall status:
// "ok" when every shard answers, "degraded" otherwise. A dead shard stays
// in the routing set; removing it would remap every other key.
type PoolHealth struct {
	Status string        `json:"status"`
	Shards []ShardHealth `json:"shards"`
}

// Pool holds one long-lived redis client per shard. All concurrent requests
// share these clients; go-redis pools connections internally. Each shard
// fails independently after startup, but startup itself is all-or-nothing.
type Pool struct {
	clients []*redis.Client
	addrs   []string
	log     *logger.Logger
}

// Options configures every shard client in the pool.
type Options struct {
	Addrs    []string // one host:port per shard, order defines shard indexes
	Password string
	DB       int
}

// NewPool builds a client per configured shard address. No connection is
// attempted here; call ConnectAll before serving.
func NewPool(opts Options, log *logger.Logger) (*Pool, error) {
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("at least one shard address is required")
	}

	clients := make([]*redis.Client, len(opts.Addrs))
	for i, addr := range opts.Addrs {
		clients[i] = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
	}

	return &Pool{
		clients: clients,
		addrs:   append([]string(nil), opts.Addrs...),
		log:     log,
	}, nil
}

// ConnectAll pings every shard and fails on the first unreachable one.
// Starting with a missing shard would silently corrupt routing for every
// other key, so startup is fail-fast, never degraded.
func (p *Pool) ConnectAll(ctx context.Context) error {
	for i, c := range p.clients {
		if err := c.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("shard %d (%s) unreachable: %w", i, p.addrs[i], err)
		}
		p.log.Info("shard connected", "shard", i, "addr", p.addrs[i])
	}
	return nil
}

// Ping checks liveness of a single shard. An unhealthy shard never affects
// the others.
func (p *Pool) Ping(ctx context.Context, i int) error {
	return p.clients[i].Ping(ctx).Err()
}

// Health pings every shard and reports the aggregate status.
func (p *Pool) Health(ctx context.Context) PoolHealth {
	h := PoolHealth{
		Status: StatusOK,
		Shards: make([]ShardHealth, len(p.clients)),
	}
	for i := range p.clients {
		sh := ShardHealth{Index: i, Addr: p.addrs[i], Healthy: true}
		if err := p.Ping(ctx, i); err != nil {
			sh.Healthy = false
			sh.Error = err.Error()
			h.Status = StatusDegraded
		}
		h.Shards[i] = sh
	}
	return h
}

// Client returns the redis client for shard i.
func (p *Pool) Client(i int) *redis.Client {
	return p.clients[i]
}

// Addr returns the configured address of shard i.
func (p *Pool) Addr(i int) string {
	return p.addrs[i]
}

// Count returns the number of shards in the pool.
func (p *Pool) Count() int {
	return len(p.clients)
}

// CloseAll closes every shard connection in order. A failing close is logged
// and the sequence continues; the first error is returned after all shards
// have been attempted.
func (p *Pool) CloseAll() error {
	var firstErr error
	for i, c := range p.clients {
		if err := c.Close(); err != nil {
			p.log.Error("failed to close shard", "shard", i, "addr", p.addrs[i], "error", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
