package services

import (
	"context"
	"sync"
	"time"

	"assetadmin/internal/models"
	"assetadmin/internal/repositories/interfaces"
	"assetadmin/pkg/logger"
)

// ActivityService persists audit entries off the request path.
type ActivityService interface {
	Record(entry *models.ActivityLog)
	// Wait blocks until pending writes are done.
	Wait()
}

type activityService struct {
	repo    interfaces.Repository[models.ActivityLog]
	timeout time.Duration
	logger  *logger.Logger
	wg      sync.WaitGroup
}

func NewActivityService(repo interfaces.Repository[models.ActivityLog], timeout time.Duration, log *logger.Logger) ActivityService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &activityService{
		repo:    repo,
		timeout: timeout,
		logger:  log,
	}
}

func (s *activityService) Record(entry *models.ActivityLog) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.repo.Create(ctx, entry); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"route":  entry.Route,
				"method": entry.Method,
			}).Warn("Failed to write activity log")
		}
	}()
}

func (s *activityService) Wait() {
	s.wg.Wait()
}
