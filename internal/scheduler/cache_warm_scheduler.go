package scheduler

import (
	"github.com/ikkim/tagmanager-backend/internal/app/service"
	"github.com/ikkim/tagmanager-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CacheWarmScheduler periodically repopulates the category tree cache
// so the first read after a TTL expiry does not pay the database cost.
type CacheWarmScheduler struct {
	cron            *cron.Cron
	categoryService service.CategoryService
	schedule        string
}

func NewCacheWarmScheduler(categoryService service.CategoryService, schedule string) *CacheWarmScheduler {
	return &CacheWarmScheduler{
		cron:            cron.New(),
		categoryService: categoryService,
		schedule:        schedule,
	}
}

func (s *CacheWarmScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		logger.Info("Starting scheduled category cache warm", nil)

		categories, err := s.categoryService.ListAll()
		if err != nil {
			logger.Error("Failed to warm category cache", err)
			return
		}

		logger.Info("Category cache warmed successfully", map[string]interface{}{
			"category_count": len(categories),
		})
	})

	if err != nil {
		logger.Error("Failed to add cron job for cache warming", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cache warm scheduler started successfully", map[string]interface{}{
		"schedule": s.schedule,
	})

	return nil
}

func (s *CacheWarmScheduler) Stop() {
	logger.Info("Stopping cache warm scheduler...", nil)
	s.cron.Stop()
	logger.Info("Cache warm scheduler stopped", nil)
}
