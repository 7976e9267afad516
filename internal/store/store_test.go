package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paularinzee/URL-Shortner/internal/logger"
	"github.com/paularinzee/URL-Shortner/internal/shard"
)

func newTestStore(t *testing.T, shards int) (*Store, []*miniredis.Miniredis) {
	t.Helper()

	servers := make([]*miniredis.Miniredis, shards)
	addrs := make([]string, shards)
	for i := range servers {
		servers[i] = miniredis.RunT(t)
		addrs[i] = servers[i].Addr()
	}

	pool, err := shard.NewPool(shard.Options{Addrs: addrs}, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, pool.ConnectAll(context.Background()))
	t.Cleanup(func() { pool.CloseAll() })

	st, err := New(pool, logger.Discard())
	require.NoError(t, err)
	return st, servers
}

func TestCreateThenGet(t *testing.T) {
	st, _ := newTestStore(t, 3)
	ctx := context.Background()

	rec, err := st.Create(ctx, "abc123", "https://example.com", 60, false)
	require.NoError(t, err)
	assert.Equal(t, "abc123", rec.ShortID)
	assert.Equal(t, "https://example.com", rec.OriginalURL)
	assert.Equal(t, int64(60), rec.TTLSeconds)
	assert.Equal(t, rec.CreatedAt.Add(60*time.Second), rec.ExpiresAt)

	got, err := st.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.OriginalURL)
	assert.Equal(t, int64(60), got.TTLSeconds)
}

func TestRecordsAreColocated(t *testing.T) {
	st, servers := newTestStore(t, 4)
	ctx := context.Background()

	_, err := st.Create(ctx, "pair-check", "https://example.com", 60, false)
	require.NoError(t, err)

	// Both records must land on the shard the router picks for the bare
	// short id, and on no other.
	want := st.router.Route("pair-check")
	for i, srv := range servers {
		if i == want {
			assert.True(t, srv.Exists(urlKey("pair-check")), "primary missing from routed shard %d", i)
			assert.True(t, srv.Exists(clicksKey("pair-check")), "counter missing from routed shard %d", i)
		} else {
			assert.False(t, srv.Exists(urlKey("pair-check")), "primary leaked to shard %d", i)
			assert.False(t, srv.Exists(clicksKey("pair-check")), "counter leaked to shard %d", i)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	st, _ := newTestStore(t, 2)

	_, err := st.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCorruptedPayloadIsBackendError(t *testing.T) {
	st, servers := newTestStore(t, 2)
	ctx := context.Background()

	idx := st.router.Route("broken")
	require.NoError(t, servers[idx].Set(urlKey("broken"), "not json at all"))

	_, err := st.Get(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, idx, be.Shard)
	assert.Equal(t, "decode", be.Op)
}

func TestTTLExpiry(t *testing.T) {
	st, servers := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "shortlived", "https://example.com", 60, false)
	require.NoError(t, err)

	_, err = st.Get(ctx, "shortlived")
	require.NoError(t, err)

	for _, srv := range servers {
		srv.FastForward(61 * time.Second)
	}

	_, err = st.Get(ctx, "shortlived")
	assert.ErrorIs(t, err, ErrNotFound)

	// The counter expires independently but was given the same TTL.
	_, err = st.GetAnalytics(ctx, "shortlived")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAliasConflictLeavesRecordUntouched(t *testing.T) {
	st, _ := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "taken", "https://first.example.com", 60, true)
	require.NoError(t, err)

	_, err = st.Create(ctx, "taken", "https://second.example.com", 60, true)
	assert.ErrorIs(t, err, ErrAliasTaken)

	got, err := st.Get(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, "https://first.example.com", got.OriginalURL)
}

func TestGeneratedIDSkipsExistenceCheck(t *testing.T) {
	st, _ := newTestStore(t, 2)
	ctx := context.Background()

	// Without isAlias the write is a plain overwrite; no conflict error.
	_, err := st.Create(ctx, "gen1", "https://a.example.com", 60, false)
	require.NoError(t, err)
	_, err = st.Create(ctx, "gen1", "https://b.example.com", 60, false)
	require.NoError(t, err)

	got, err := st.Get(ctx, "gen1")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example.com", got.OriginalURL)
}

func TestRecordClickConcurrent(t *testing.T) {
	st, _ := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "clicky", "https://example.com", 300, false)
	require.NoError(t, err)

	const n = 50
	var callers sync.WaitGroup
	callers.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer callers.Done()
			st.RecordClick("clicky")
		}()
	}
	callers.Wait()

	// Drain the detached increments, then the count must be exact: the
	// backend increment is atomic, no lost updates, no double counting.
	st.Wait()

	stats, err := st.GetAnalytics(ctx, "clicky")
	require.NoError(t, err)
	assert.Equal(t, int64(n), stats.Clicks)
}

func TestRecordClickSurvivesDeadShard(t *testing.T) {
	st, servers := newTestStore(t, 2)
	ctx := context.Background()

	_, err := st.Create(ctx, "doomed", "https://example.com", 60, false)
	require.NoError(t, err)

	for _, srv := range servers {
		srv.Close()
	}

	// Must not panic, block, or surface an error to the caller.
	st.RecordClick("doomed")
	st.Wait()
}

func TestGetAnalytics(t *testing.T) {
	st, servers := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "tracked", "https://example.com", 60, false)
	require.NoError(t, err)

	stats, err := st.GetAnalytics(ctx, "tracked")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Clicks)
	assert.Equal(t, "https://example.com", stats.Record.OriginalURL)

	st.RecordClick("tracked")
	st.Wait()

	stats, err = st.GetAnalytics(ctx, "tracked")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Clicks)

	// A counter that expired while the primary record lives reads as zero.
	idx := st.router.Route("tracked")
	servers[idx].Del(clicksKey("tracked"))

	stats, err = st.GetAnalytics(ctx, "tracked")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Clicks)
}

func TestGetAnalyticsPrimaryIsAuthoritative(t *testing.T) {
	st, servers := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "orphaned", "https://example.com", 60, false)
	require.NoError(t, err)

	// Delete only the primary: the stray counter must not resurrect the id.
	idx := st.router.Route("orphaned")
	servers[idx].Del(urlKey("orphaned"))

	_, err = st.GetAnalytics(ctx, "orphaned")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIdempotent(t *testing.T) {
	st, servers := newTestStore(t, 3)
	ctx := context.Background()

	_, err := st.Create(ctx, "gone", "https://example.com", 60, false)
	require.NoError(t, err)

	existed, err := st.Delete(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = st.Delete(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, existed)

	// Both records are gone everywhere.
	for _, srv := range servers {
		assert.False(t, srv.Exists(urlKey("gone")))
		assert.False(t, srv.Exists(clicksKey("gone")))
	}
}
