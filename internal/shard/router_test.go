package shard

import "testing"

func TestNewRouterRejectsBadCounts(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"zero shards", 0},
		{"negative shards", -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRouter(tt.count); err == nil {
				t.Errorf("NewRouter(%d) expected error, got nil", tt.count)
			}
		})
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	r, err := NewRouter(8)
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}

	keys := []string{"abc123", "a", "some-longer-key_42", "abc124", ""}
	for _, key := range keys {
		first := r.Route(key)
		for i := 0; i < 100; i++ {
			if got := r.Route(key); got != first {
				t.Fatalf("Route(%q) not stable: got %d, want %d", key, got, first)
			}
		}
	}
}

func TestRouteStaysInRange(t *testing.T) {
	for _, count := range []int{1, 2, 3, 7, 16} {
		r, err := NewRouter(count)
		if err != nil {
			t.Fatalf("NewRouter(%d) failed: %v", count, err)
		}

		for i := 0; i < 500; i++ {
			key := "key-" + string(rune('a'+i%26)) + "-" + string(rune('0'+i%10))
			idx := r.Route(key)
			if idx < 0 || idx >= count {
				t.Fatalf("Route(%q) = %d out of range [0,%d)", key, idx, count)
			}
		}
	}
}

func TestRouteSingleShard(t *testing.T) {
	r, _ := NewRouter(1)
	for _, key := range []string{"x", "y", "anything at all"} {
		if idx := r.Route(key); idx != 0 {
			t.Errorf("Route(%q) = %d with one shard; want 0", key, idx)
		}
	}
}

func TestRouteDistribution(t *testing.T) {
	// A strong hash should spread similar keys near-uniformly. Keys sharing
	// a prefix and length are the pathological case for naive hashing.
	const shards = 4
	const keys = 4000

	r, _ := NewRouter(shards)

	counts := make([]int, shards)
	for i := 0; i < keys; i++ {
		counts[r.Route(fmtKey(i))]++
	}

	// Expect ~1000 per shard; anything under half or over double signals
	// clustering.
	for i, c := range counts {
		if c < keys/shards/2 || c > keys/shards*2 {
			t.Errorf("shard %d got %d of %d keys; distribution is skewed: %v", i, c, keys, counts)
		}
	}
}

func fmtKey(i int) string {
	// short-url style keys: fixed prefix, same length
	const digits = "0123456789"
	return "link" + string(digits[i/1000%10]) + string(digits[i/100%10]) + string(digits[i/10%10]) + string(digits[i%10])
}
