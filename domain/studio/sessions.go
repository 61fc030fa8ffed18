package studio

import (
	"context"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Sessions hands out one Controller per session id. Idle sessions are
// evicted by the LRU; their persisted text survives eviction.
type Sessions struct {
	cache      *cache.NamespaceLRU
	encoder    Encoder
	store      PreferenceStore
	storageKey string
}

func NewSessions(lru *cache.NamespaceLRU, encoder Encoder, store PreferenceStore, storageKey string) *Sessions {
	logger.Debug("Creating studio sessions", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService: "studio",
		},
	})

	return &Sessions{
		cache:      lru,
		encoder:    encoder,
		store:      store,
		storageKey: storageKey,
	}
}

// Controller returns the controller for id, creating and restoring it on
// first use.
func (s *Sessions) Controller(ctx context.Context, id string) *Controller {
	value, created := s.cache.GetOrCreate(constant.SessionNamespace, id, func() interface{} {
		ctrl := NewController(s.encoder, s.store, id, s.storageKey)
		ctrl.Restore(ctx)
		return ctrl
	})

	if created {
		logger.CtxInfo(ctx, "Session started", logger.LoggerInfo{
			ContextFunction: constant.CtxSessions,
			Data: map[string]interface{}{
				constant.DataSessionID: id,
				constant.DataSessions:  s.Active(),
			},
		})
	}

	return value.(*Controller)
}

// Active returns the number of sessions currently held in memory.
func (s *Sessions) Active() int {
	return s.cache.Size()
}
