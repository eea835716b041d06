package store

import (
	"context"
	"sync"
	"time"

	"github.com/biolens/BioLensAPI/internal/config"
)

type quotaWindow struct {
	count     int
	startedAt time.Time
}

type InMemoryQuotaStore struct {
	quotaLock *sync.Mutex
	windows   map[string]*quotaWindow
	now       func() time.Time
}

func InitInMemoryQuotaStore() *InMemoryQuotaStore {
	return &InMemoryQuotaStore{
		quotaLock: new(sync.Mutex),
		windows:   make(map[string]*quotaWindow),
		now:       time.Now,
	}
}

func (store *InMemoryQuotaStore) Allow(ctx context.Context, callerKey string) (int, bool, error) {
	store.quotaLock.Lock()
	defer store.quotaLock.Unlock()

	now := store.now()
	window, ok := store.windows[callerKey]
	if !ok || now.Sub(window.startedAt) >= config.QuotaWindow {
		window = &quotaWindow{startedAt: now}
		store.windows[callerKey] = window
	}

	window.count++
	remaining := config.DailyAnalysisLimit - window.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, window.count <= config.DailyAnalysisLimit, nil
}
