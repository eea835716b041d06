package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/data/redisStore"
	"github.com/biolens/BioLensAPI/internal/data/store"
	"github.com/redis/go-redis/v9"
)

func TestRedisQuotaStore_DailyLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	quotaStore := store.TestQuotaStore(redisStore.NewTestStore(client))

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "quota-trace")
	caller := "203.0.113.7"

	t.Run("Allows up to the limit", func(t *testing.T) {
		for i := 1; i <= config.DailyAnalysisLimit; i++ {
			remaining, allowed, err := quotaStore.Allow(ctx, caller)
			if err != nil {
				t.Fatalf("Allow failed on call %d: %v", i, err)
			}
			if !allowed {
				t.Fatalf("call %d denied before the limit", i)
			}
			if remaining != config.DailyAnalysisLimit-i {
				t.Errorf("call %d remaining got %d, want %d", i, remaining, config.DailyAnalysisLimit-i)
			}
		}
	})

	t.Run("Denies past the limit", func(t *testing.T) {
		remaining, allowed, err := quotaStore.Allow(ctx, caller)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if allowed {
			t.Error("call past the limit was allowed")
		}
		if remaining != 0 {
			t.Errorf("remaining got %d, want 0", remaining)
		}
	})

	t.Run("Other callers are unaffected", func(t *testing.T) {
		_, allowed, err := quotaStore.Allow(ctx, "198.51.100.1")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !allowed {
			t.Error("fresh caller was denied")
		}
	})

	t.Run("Window expiry resets the allowance", func(t *testing.T) {
		mr.FastForward(config.QuotaWindow + time.Second)

		_, allowed, err := quotaStore.Allow(ctx, caller)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !allowed {
			t.Error("caller still denied after the window expired")
		}
	})
}

func TestInMemoryQuotaStore_DailyLimit(t *testing.T) {
	quotaStore := store.InitInMemoryQuotaStore()
	ctx := context.Background()

	for i := 1; i <= config.DailyAnalysisLimit; i++ {
		_, allowed, _ := quotaStore.Allow(ctx, "caller")
		if !allowed {
			t.Fatalf("call %d denied before the limit", i)
		}
	}
	_, allowed, _ := quotaStore.Allow(ctx, "caller")
	if allowed {
		t.Error("call past the limit was allowed")
	}
}
