package services

import (
	"context"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/logger"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"
)

// CleanupService drives the SoftDeleted to Purged transition: files that
// stayed soft-deleted past the retention window are permanently removed.
type CleanupService interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type cleanupService struct {
	files repositories.FileRepository
}

func NewCleanupService(files repositories.FileRepository) CleanupService {
	return &cleanupService{files: files}
}

func (s *cleanupService) PurgeExpired(ctx context.Context) (int, error) {
	retentionDays := config.AppConfig.Storage.RetentionDays
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	expired, err := s.files.ListDeletedBefore(ctx, nil, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, file := range expired {
		if err := s.files.PurgeByID(ctx, nil, file.ID); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}

var defaultCleanupService CleanupService

func SetCleanupService(svc CleanupService) {
	defaultCleanupService = svc
}

// StartCleanupWorkers runs the retention purge on a fixed interval.
func StartCleanupWorkers() {
	if defaultCleanupService == nil {
		return
	}
	go retentionCleanupLoop()
}

func retentionCleanupLoop() {
	interval := time.Duration(config.AppConfig.Storage.CleanupInterval) * time.Second
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		purged, err := defaultCleanupService.PurgeExpired(context.Background())
		if err != nil {
			logger.Warnf("retention cleanup failed: %v", err)
			continue
		}
		if purged > 0 {
			logger.Infof("retention cleanup purged %d files", purged)
		}
	}
}
