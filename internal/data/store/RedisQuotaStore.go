package store

import (
	"context"

	"github.com/biolens/BioLensAPI/internal/config"
	"github.com/biolens/BioLensAPI/internal/data/redisStore"
	"github.com/biolens/BioLensAPI/pkg/logger_i"
)

type RedisQuotaStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisQuotaStore(ctx context.Context) *RedisQuotaStore {
	backing := redisStore.GetRedisStore(ctx, config.RedisQuotaStore)
	if backing == nil {
		return nil
	}
	return &RedisQuotaStore{
		store:  backing,
		logger: logger_i.NewLogger("QuotaStore"),
	}
}

// Allow spends one analysis from the caller's daily allowance. The window
// starts at the caller's first analysis of the day, not at midnight.
func (s *RedisQuotaStore) Allow(ctx context.Context, callerKey string) (int, bool, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "caller", callerKey)

	count, err := s.store.CountInWindow(ctx, quotaKey(callerKey), config.QuotaWindow)
	if err != nil {
		log.Error("Quota check failed", "error", err)
		return 0, false, err
	}

	remaining := config.DailyAnalysisLimit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	allowed := count <= config.DailyAnalysisLimit
	if !allowed {
		log.Warn("Daily analysis limit reached")
	}
	return remaining, allowed, nil
}

func quotaKey(callerKey string) string {
	return "quota:" + callerKey
}

func TestQuotaStore(store *redisStore.Store) *RedisQuotaStore {
	return &RedisQuotaStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}
