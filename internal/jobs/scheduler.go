package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"rently/internal/cache"
	"rently/internal/providers"
	"rently/internal/services"
	"rently/internal/structures"
	"rently/internal/watch"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// Scheduler owns the background lifecycle: the listing-event watcher, the
// cache and lockout sweeps, the periodic cache-mirror flush and the daily
// cleanup of read admin notifications.
type Scheduler struct {
	config        *structures.Config
	logger        providers.Logger
	notifications services.NotificationServiceInterface
	auth          *services.AuthService
	entityCache   *cache.Cache
	mirror        cache.MirrorInterface
	watcher       *watch.Watcher
	cron          *gron.Cron
	opsMu         sync.Mutex
}

func (s *Scheduler) Init() {
	s.watcher.Start()
	s.entityCache.Start()
	s.auth.Start()

	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Jobs.MirrorFlushInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		if err := s.mirror.Flush(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while flushing cache mirror: %s", err)
		}
	})

	s.cron.AddFunc(gron.Every(s.config.Notifications.CleanupInterval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.notifications.CleanupExpired(ctx); err != nil {
			s.logger.Errorf(providers.TypeApp, "Notification cleanup failed: %s", err)
		}
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.auth.Stop()
	s.entityCache.Stop()
	s.watcher.Stop()
}

// Restore loads the durable cache mirror written by a previous run.
func (s *Scheduler) Restore() error {
	return s.mirror.Load()
}

// Persist flushes the cache mirror on shutdown.
func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Flushing cache mirror...")
	if err := s.mirror.Flush(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while flushing cache mirror: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, notifications services.NotificationServiceInterface, auth *services.AuthService, entityCache *cache.Cache, mirror cache.MirrorInterface, watcher *watch.Watcher) SchedulerInterface {
	return &Scheduler{
		config:        config,
		logger:        logger,
		notifications: notifications,
		auth:          auth,
		entityCache:   entityCache,
		mirror:        mirror,
		watcher:       watcher,
	}
}
